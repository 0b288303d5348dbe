package main

import (
	"errors"
	"log"
	"net/http"
	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func transactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkout", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var body types.CreateCheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := purchaseFlow.Checkout(ctx.Request.Context(), &common.CheckoutInput{
				UserID:    userId,
				RaffleIDs: body.RaffleIDs,
				Bucks:     body.Bucks,
				PromoCode: body.PromoCode,
			})
			if err != nil {
				switch {
				case errors.Is(err, common.ErrDuplicateEntry):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrPromoUnavailable),
					errors.Is(err, common.ErrPromoExpired),
					errors.Is(err, common.ErrPromoExhausted),
					errors.Is(err, common.ErrPromoNotAllowed):
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				default:
					log.Printf("Error creating checkout: %s\n", err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		GET("/transactions", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var txns []models.Transaction
			err := db.
				Model(&models.Transaction{}).
				Where(&models.Transaction{UserID: userId}).
				Preload("PromoCode").
				Order("created_at DESC").
				Limit(20).
				Find(&txns).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": txns, "count": len(txns)})
		}).
		POST("/promocodes/apply", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var body types.ApplyPromoRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			var quote *common.PromoQuote
			err := conn.Transaction(func(tx *gorm.DB) error {
				var err error
				quote, err = common.QuotePromo(tx, body.Code, userId, body.Subtotal)
				return err
			})
			if err != nil {
				switch {
				case errors.Is(err, common.ErrPromoUnavailable),
					errors.Is(err, common.ErrPromoExpired),
					errors.Is(err, common.ErrPromoExhausted),
					errors.Is(err, common.ErrPromoNotAllowed):
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": quote})
		})
	return g
}
