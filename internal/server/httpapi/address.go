package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/server/models"
)

type addressRequest struct {
	Street string `json:"street" binding:"required"`
	City   string `json:"city" binding:"required"`
	State  string `json:"state" binding:"required"`
}

type addressResponse struct {
	ID        uuid.UUID `json:"id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAddressResponse(a *models.Address) addressResponse {
	return addressResponse{
		ID:        a.ID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (s *Server) createAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "street, city and state are required"})
		return
	}

	address, err := s.addresses.Create(c.Request.Context(), authedUserID(c), req.Street, req.City, req.State)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address already exists"})
			return
		}
		s.logger.Error(c.Request.Context(), "failed to create address", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "address created successfully",
		"address": toAddressResponse(address),
	})
}

func (s *Server) getAddress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	address, err := s.addresses.Get(c.Request.Context(), id, authedUserID(c))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}
		s.logger.Error(c.Request.Context(), "failed to load address", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toAddressResponse(address))
}

func (s *Server) listAddresses(c *gin.Context) {
	list, err := s.addresses.List(c.Request.Context(), authedUserID(c))
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to list addresses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	result := make([]addressResponse, 0, len(list))
	for i := range list {
		result = append(result, toAddressResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"addresses": result})
}

func (s *Server) updateAddress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "street, city and state are required"})
		return
	}

	address, err := s.addresses.Update(c.Request.Context(), id, authedUserID(c), req.Street, req.City, req.State)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
		case errors.Is(err, common.ErrorAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "address is unchanged"})
		default:
			s.logger.Error(c.Request.Context(), "failed to update address", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "address updated successfully",
		"address": toAddressResponse(address),
	})
}

func (s *Server) deleteAddress(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	if err := s.addresses.Delete(c.Request.Context(), id, authedUserID(c)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}
		s.logger.Error(c.Request.Context(), "failed to delete address", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}
