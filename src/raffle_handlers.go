package main

import (
	"net/http"
	"os"
	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"
	"rbs/src/utils"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// optionalUserID resolves the caller from a bearer token when one is
// sent. Public raffle routes use it to annotate cart membership
// without requiring auth.
func optionalUserID(ctx *gin.Context) uint {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer ") {
		return 0
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(strings.TrimPrefix(bearerToken, "Bearer "), claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil || !tkn.Valid {
		return 0
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0
	}
	return uint(uid)
}

func heldRaffleIDs(userID uint) map[uint]bool {
	if userID == 0 {
		return nil
	}
	db := db.GetDb()
	var ids []uint
	err := db.
		Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND carts.expires_at > ?", userID, time.Now()).
		Pluck("cart_items.raffle_id", &ids).
		Error
	if err != nil {
		return nil
	}
	held := make(map[uint]bool, len(ids))
	for _, id := range ids {
		held[id] = true
	}
	return held
}

func publicRaffleRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/raffles", func(ctx *gin.Context) {
			var filters types.RaffleQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			offset, limit := utils.Pagination(ctx)
			db := db.GetDb()
			q := db.
				Model(&models.Raffle{}).
				Where("is_deleted = ?", false)
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			} else {
				q = q.Where("status IN ?", []types.RaffleStatus{types.RAFFLE_INACTIVE, types.RAFFLE_ACTIVE})
			}
			if filters.RewardType != "" {
				q = q.Where("id IN (?)", db.
					Model(&models.Reward{}).
					Select("raffle_id").
					Where("type = ?", filters.RewardType),
				)
			}
			var count int64
			if err := q.Count(&count).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			var raffles []models.Raffle
			err := q.
				Preload("Rewards").
				Order("start_date ASC").
				Offset(offset).
				Limit(limit).
				Find(&raffles).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			held := heldRaffleIDs(optionalUserID(ctx))
			for i := range raffles {
				raffles[i].IsAddedInCart = held[raffles[i].ID]
			}
			ctx.JSON(http.StatusOK, gin.H{"data": raffles, "count": count})
		}).
		GET("/raffles/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var raffle models.Raffle
			err := db.
				Where("id = ? AND is_deleted = ?", params.ID, false).
				Preload("Rewards").
				First(&raffle).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "raffle not found"})
				return
			}
			held := heldRaffleIDs(optionalUserID(ctx))
			raffle.IsAddedInCart = held[raffle.ID]
			ctx.JSON(http.StatusOK, gin.H{"data": raffle})
		})
	return apiv1
}
