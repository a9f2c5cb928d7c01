// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"github.com/eltech/store-backend/internal/domain/coupon"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// CouponHandler handles admin coupon management
type CouponHandler struct {
	couponService *coupon.Service
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *coupon.Service) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// GetCoupons handles GET /admin/coupons
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	var params pagination.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	coupons, meta, err := h.couponService.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, "Coupons retrieved successfully", coupons, meta)
}

// GetCoupon handles GET /admin/coupons/:id
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id, ok := parseID(c, "id", "coupon")
	if !ok {
		return
	}

	cp, err := h.couponService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Coupon retrieved successfully", cp)
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CouponCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "Coupon created successfully", cp)
}

// UpdateCoupon handles PUT /admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, ok := parseID(c, "id", "coupon")
	if !ok {
		return
	}

	var req coupon.CouponUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Coupon updated successfully", cp)
}

// DeleteCoupon handles DELETE /admin/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseID(c, "id", "coupon")
	if !ok {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "Coupon deleted successfully", nil)
}
