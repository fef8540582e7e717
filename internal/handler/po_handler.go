package handler

import (
	"net/http"

	"woms/internal/middleware"
	"woms/internal/service"
	"woms/pkg/response"

	"github.com/gin-gonic/gin"
)

type POHandler struct {
	poService service.POService
}

// NewPOHandler sets up the routing dependencies for purchase order endpoints
func NewPOHandler(poService service.POService) *POHandler {
	return &POHandler{poService: poService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *POHandler) RegisterRoutes(router *gin.RouterGroup) {
	po := router.Group("/po", middleware.Authenticate())
	{
		po.POST("/draft-po/create/:request_id", h.CreateDraft)
		po.GET("/draft-po/:id", h.GetDraft)
		po.GET("/draft-po/by-request/:request_id", h.DraftForRequest)
		po.PATCH("/save-draft/:id", h.SaveDraft)
		po.POST("/finalize/:id", h.Finalize)
		po.GET("/preview/:id", h.Preview)
		po.GET("/view/:request_id/pdf", h.ViewPDF)
	}
}

// CreateDraft opens a draft purchase order for an approved request
// @Summary      Create draft purchase order
// @Description  Mints PO and RV numbers and opens the one draft allowed per request
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      201         {object}  response.Response{data=service.DraftPOResponse}
// @Failure      400         {object}  response.Response
// @Failure      412         {object}  response.Response
// @Router       /po/draft-po/create/{request_id} [post]
func (h *POHandler) CreateDraft(c *gin.Context) {
	result, err := h.poService.CreateDraft(c.Request.Context(), c.Param("request_id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// GetDraft returns a draft by ID
// @Summary      Get draft purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  response.Response{data=service.DraftPOResponse}
// @Failure      404  {object}  response.Response
// @Router       /po/draft-po/{id} [get]
func (h *POHandler) GetDraft(c *gin.Context) {
	result, err := h.poService.GetDraft(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DraftForRequest returns the draft attached to a request
// @Summary      Get draft by request
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      200         {object}  response.Response{data=service.DraftPOResponse}
// @Failure      404         {object}  response.Response
// @Router       /po/draft-po/by-request/{request_id} [get]
func (h *POHandler) DraftForRequest(c *gin.Context) {
	result, err := h.poService.DraftForRequest(c.Request.Context(), c.Param("request_id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// SaveDraft merges form fields into a draft
// @Summary      Save draft fields
// @Description  Key-wise merge of the posted fields into the draft; unmentioned fields survive
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Draft ID"
// @Param        payload  body      map[string]interface{}  true  "Fields to merge"
// @Success      200      {object}  response.Response{data=service.DraftPOResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /po/save-draft/{id} [patch]
func (h *POHandler) SaveDraft(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.poService.SaveDraft(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Finalize turns a draft into an immutable purchase order
// @Summary      Finalize purchase order
// @Description  Renders the PO PDF, creates the immutable purchase order and closes the draft
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {object}  response.Response{data=service.FinalizePOResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /po/finalize/{id} [post]
func (h *POHandler) Finalize(c *gin.Context) {
	result, err := h.poService.Finalize(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Preview renders the draft as a PDF without persisting anything
// @Summary      Preview draft purchase order
// @Tags         purchase-orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft ID"
// @Success      200  {file}    binary
// @Failure      403  {object}  response.Response
// @Router       /po/preview/{id} [get]
func (h *POHandler) Preview(c *gin.Context) {
	pdf, err := h.poService.Preview(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, "po_preview.pdf", pdf)
}

// ViewPDF streams the finalized purchase order document of a request
// @Summary      Fetch purchase order PDF
// @Tags         purchase-orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        request_id  path      string  true  "Request ID"
// @Success      200         {file}    binary
// @Failure      404         {object}  response.Response
// @Router       /po/view/{request_id}/pdf [get]
func (h *POHandler) ViewPDF(c *gin.Context) {
	pdf, name, err := h.poService.PurchaseOrderPDF(c.Request.Context(), c.Param("request_id"), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	servePDF(c, name, pdf)
}
