package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

type OfferController struct {
	offers *services.OfferService
}

func NewOfferController(offers *services.OfferService) *OfferController {
	return &OfferController{offers: offers}
}

func (oc *OfferController) GetOffer(c *gin.Context) {
	offer, err := oc.offers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offer retrieved", offer)
}

func (oc *OfferController) ListOffersByIdea(c *gin.Context) {
	offers, err := oc.offers.ListByIdea(c.Request.Context(), c.Param("ideaId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offers retrieved", offers)
}

func (oc *OfferController) ListOffersByInvestor(c *gin.Context) {
	offers, err := oc.offers.ListByInvestor(c.Request.Context(), c.Param("investorId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offers retrieved", offers)
}

// ListOffersByStatus is paged
func (oc *OfferController) ListOffersByStatus(c *gin.Context) {
	status, ok := models.ParseOfferStatus(c.Param("status"))
	if !ok {
		utils.RespondAppError(c, utils.NewValidationError("Invalid offer status"))
		return
	}
	page, err := oc.offers.ListByStatus(c.Request.Context(), status, utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offers retrieved", page)
}

// CreateOffer places a PENDING offer on a startup
func (oc *OfferController) CreateOffer(c *gin.Context) {
	var input services.CreateOfferInput
	if !bindJSON(c, &input, "Invalid investment offer payload") {
		return
	}
	offer, err := oc.offers.Create(c.Request.Context(), middlewares.CurrentActor(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Investment offer created", offer)
}

func (oc *OfferController) UpdateOffer(c *gin.Context) {
	var patch models.OfferPatch
	if !bindJSON(c, &patch, "Invalid investment offer payload") {
		return
	}
	offer, err := oc.offers.Update(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offer updated", offer)
}

func (oc *OfferController) AcceptOffer(c *gin.Context) {
	offer, err := oc.offers.Accept(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offer accepted", offer)
}

func (oc *OfferController) RejectOffer(c *gin.Context) {
	offer, err := oc.offers.Reject(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offer rejected", offer)
}

func (oc *OfferController) DeleteOffer(c *gin.Context) {
	if err := oc.offers.Delete(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offer deleted", nil)
}
