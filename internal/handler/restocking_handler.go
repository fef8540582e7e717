package handler

import (
	"net/http"

	"woms/internal/middleware"
	"woms/internal/model"
	"woms/internal/service"
	"woms/pkg/apperror"
	"woms/pkg/pagination"
	"woms/pkg/response"

	"github.com/gin-gonic/gin"
)

// restockPageSize is the fixed page size of the restocking list surfaces.
const restockPageSize = 7

type RestockingHandler struct {
	restockingService service.RestockingService
}

// NewRestockingHandler sets up the routing dependencies for the restocking
// workflow endpoints.
func NewRestockingHandler(restockingService service.RestockingService) *RestockingHandler {
	return &RestockingHandler{restockingService: restockingService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *RestockingHandler) RegisterRoutes(router *gin.RouterGroup) {
	warehouse := router.Group("/warehouse", middleware.Authenticate())
	{
		warehouse.POST("/restock-requests", h.CreateRequest)
		warehouse.GET("/restock-requests", h.ListMyRequests)
	}

	budget := router.Group("/budget")
	{
		budget.GET("/restocking/pending", middleware.RequireRole(model.RoleBudgetAnalyst), h.ListPending)
		budget.POST("/restocking/approve/:id", middleware.RequireRole(model.RoleBudgetAnalyst), h.Approve)
		budget.POST("/restocking/reject/:id", middleware.Authenticate(), h.Reject)
		budget.GET("/restocking/history", middleware.RequireRole(model.RoleBudgetAnalyst), h.History)
		budget.GET("/approved-requests", middleware.RequireRole(model.RoleBudgetAnalyst), h.ListApproved)
	}

	engineering := router.Group("/engineering", middleware.RequireRole(model.RoleEngineering))
	{
		engineering.POST("/restocking/sign/:id", h.Countersign)
		engineering.GET("/restocking/requests", h.ListAll)
	}

	voucher := router.Group("/requisition-voucher", middleware.Authenticate())
	{
		voucher.POST("/preview", h.PreviewVoucher)
		voucher.GET("/view/:request_id/pdf", h.VoucherPDF)
	}
}

// CreateRequest submits a restocking request and issues its voucher
// @Summary      Create restocking request
// @Description  Creates a material restock request with its requisition voucher and PDF in one step
// @Tags         restocking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRestockRequestDTO  true  "Items to request"
// @Success      201      {object}  response.Response{data=service.RestockRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /warehouse/restock-requests [post]
func (h *RestockingHandler) CreateRequest(c *gin.Context) {
	var req service.CreateRestockRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.restockingService.Create(c.Request.Context(), c.GetString(middleware.CtxUserID), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListMyRequests returns the caller's own restocking requests
// @Summary      List own restocking requests
// @Tags         restocking
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Page
// @Router       /warehouse/restock-requests [get]
func (h *RestockingHandler) ListMyRequests(c *gin.Context) {
	params := pagination.Parse(c, restockPageSize)
	results, total, err := h.restockingService.ListMine(c.Request.Context(), c.GetString(middleware.CtxUserID), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// ListPending returns requests awaiting a budget decision
// @Summary      List pending restocking requests
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Page
// @Router       /budget/restocking/pending [get]
func (h *RestockingHandler) ListPending(c *gin.Context) {
	params := pagination.Parse(c, restockPageSize)
	results, total, err := h.restockingService.ListPending(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// Approve approves a pending request and signs its voucher
// @Summary      Approve restocking request
// @Description  Approves a pending request, stamping the analyst's signature onto the voucher PDF
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.SignResult}
// @Failure      400  {object}  response.Response
// @Failure      412  {object}  response.Response
// @Router       /budget/restocking/approve/{id} [post]
func (h *RestockingHandler) Approve(c *gin.Context) {
	result, err := h.restockingService.Approve(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject rejects a pending request
// @Summary      Reject restocking request
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /budget/restocking/reject/{id} [post]
func (h *RestockingHandler) Reject(c *gin.Context) {
	if err := h.restockingService.Reject(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "request rejected"}))
}

// History returns processed requests with filters
// @Summary      Restocking decision history
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "approved or rejected"
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        ordering    query     string  false  "created_at, approved_at or rejected_at, '-' prefix for descending"
// @Success      200         {object}  response.Page
// @Router       /budget/restocking/history [get]
func (h *RestockingHandler) History(c *gin.Context) {
	params := pagination.Parse(c, restockPageSize)
	filter := service.ProcessedFilter{
		Status:    c.Query("status"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Ordering:  c.Query("ordering"),
		Offset:    params.Offset,
		Limit:     params.Limit,
	}
	results, total, err := h.restockingService.ListProcessed(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// ListApproved returns approved requests ready for PO drafting
// @Summary      List approved restocking requests
// @Tags         budget
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Page
// @Router       /budget/approved-requests [get]
func (h *RestockingHandler) ListApproved(c *gin.Context) {
	params := pagination.Parse(c, restockPageSize)
	results, total, err := h.restockingService.ListApproved(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// Countersign overlays the engineering signature onto a voucher
// @Summary      Countersign requisition voucher
// @Tags         engineering
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.SignResult}
// @Failure      412  {object}  response.Response
// @Router       /engineering/restocking/sign/{id} [post]
func (h *RestockingHandler) Countersign(c *gin.Context) {
	result, err := h.restockingService.Countersign(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListAll returns every restocking request for the engineering overview
// @Summary      List all restocking requests
// @Tags         engineering
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Page
// @Router       /engineering/restocking/requests [get]
func (h *RestockingHandler) ListAll(c *gin.Context) {
	params := pagination.Parse(c, restockPageSize)
	results, total, err := h.restockingService.ListAll(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// PreviewVoucher renders an unsaved voucher PDF
// @Summary      Preview requisition voucher
// @Description  Renders a voucher PDF from the posted items without persisting anything
// @Tags         voucher
// @Accept       json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        payload  body  service.CreateRestockRequestDTO  true  "Items to preview"
// @Success      200      {file}    binary
// @Failure      400      {object}  response.Response
// @Router       /requisition-voucher/preview [post]
func (h *RestockingHandler) PreviewVoucher(c *gin.Context) {
	var req service.CreateRestockRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pdf, err := h.restockingService.PreviewVoucher(c.Request.Context(), c.GetString(middleware.CtxUserID), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, "voucher_preview.pdf", pdf)
}

// VoucherPDF streams the stored voucher document of a request
// @Summary      Fetch requisition voucher PDF
// @Tags         voucher
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      200         {file}    binary
// @Failure      404         {object}  response.Response
// @Router       /requisition-voucher/view/{request_id}/pdf [get]
func (h *RestockingHandler) VoucherPDF(c *gin.Context) {
	pdf, name, err := h.restockingService.VoucherPDF(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, name, pdf)
}

// respondError maps a service error onto the shared response envelope.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, apperror.Message(err)))
}

func servePDF(c *gin.Context, filename string, pdf []byte) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
