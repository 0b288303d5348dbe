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
)

func entryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/users/me", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var user models.User
			if err := db.First(&user, userId).Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		GET("/entries", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			list, err := entries.ListEntries(userId)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list, "count": len(list)})
		}).
		POST("/raffles/:id/entries", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := entries.Buy(userId, params.ID)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrInsufficientFunds):
					ctx.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrDuplicateEntry):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrNotAvailable):
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				default:
					log.Printf("Error buying raffle %d: %s\n", params.ID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		DELETE("/raffles/:id/entries", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			err := entries.Withdraw(userId, params.ID)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, common.ErrRaffleLocked):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					log.Printf("Error withdrawing from raffle %d: %s\n", params.ID, err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
