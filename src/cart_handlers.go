package main

import (
	"errors"
	"log"
	"net/http"
	"rbs/src/common"
	"rbs/src/types"

	"github.com/gin-gonic/gin"
)

func cartHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/cart", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			items, expiresAt, err := carts.List(userId)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"data":       items,
				"count":      len(items),
				"expires_at": expiresAt,
			})
		}).
		POST("/cart/items", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var body types.AddToCartRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			raffle, err := carts.Add(userId, body.RaffleID)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrAlreadyInCart):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrNotAvailable):
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				default:
					log.Printf("Error adding raffle %d to cart: %s\n", body.RaffleID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": raffle})
		}).
		DELETE("/cart/items/:id", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			raffle, err := carts.Remove(userId, params.ID)
			if err != nil {
				if errors.Is(err, common.ErrNotInCart) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Error removing raffle %d from cart: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": raffle})
		})
	return g
}
