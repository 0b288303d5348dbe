package main

import (
	"log"
	"net/http"
	"rbs/src/db"
	"rbs/src/models"
	"rbs/src/types"
	"rbs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/raffles", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var body types.CreateRaffleRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := utils.ParseDate(body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endDate, err := utils.ParseDate(body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			raffle := models.Raffle{
				Title:       body.Title,
				Slug:        utils.Slugify(body.Title),
				Description: body.Description,
				Price:       body.Price,
				TotalSlots:  body.TotalSlots,
				StartDate:   startDate,
				EndDate:     endDate,
				Status:      types.RAFFLE_INACTIVE,
				CreatedBy:   userId,
			}
			for _, r := range body.Rewards {
				reward := models.Reward{
					Name:              r.Name,
					Type:              types.RewardType(r.Type),
					ConsolationPoints: r.ConsolationPoints,
				}
				if r.GiftCardCategory != "" {
					category := r.GiftCardCategory
					reward.GiftCardCategory = &category
				}
				raffle.Rewards = append(raffle.Rewards, reward)
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&raffle).Error
			})
			if err != nil {
				log.Printf("Error creating raffle: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": raffle})
		}).
		PATCH("/raffles/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateRaffleRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var raffle models.Raffle
				if err := tx.
					Where("id = ? AND is_deleted = ?", params.ID, false).
					First(&raffle).
					Error; err != nil {
					return err
				}
				updates := map[string]any{}
				if body.Title != nil {
					updates["title"] = *body.Title
					updates["slug"] = utils.Slugify(*body.Title)
				}
				if body.Description != nil {
					updates["description"] = *body.Description
				}
				if body.Price != nil {
					updates["price"] = *body.Price
				}
				if body.TotalSlots != nil {
					// Never shrink below what is already booked.
					if *body.TotalSlots < raffle.BookedSlots {
						updates["total_slots"] = raffle.BookedSlots
					} else {
						updates["total_slots"] = *body.TotalSlots
					}
				}
				if body.EndDate != nil {
					endDate, err := utils.ParseDate(*body.EndDate)
					if err != nil {
						return err
					}
					updates["end_date"] = endDate
				}
				if len(updates) == 0 {
					return nil
				}
				return tx.
					Model(&models.Raffle{}).
					Where("id = ?", params.ID).
					Updates(updates).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PATCH("/raffles/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateRaffleStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Raffle{}).
					Where("id = ? AND is_deleted = ?", params.ID, false).
					Update("status", types.RaffleStatus(body.Status))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "raffle not found"})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/raffles/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Raffle{}).
					Where("id = ?", params.ID).
					Update("is_deleted", true)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "raffle not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/winners", func(ctx *gin.Context) {
			offset, limit := utils.Pagination(ctx)
			db := db.GetDb()
			var winners []models.RaffleWinner
			err := db.
				Model(&models.RaffleWinner{}).
				Preload("Raffle").
				Preload("User").
				Preload("Reward").
				Order("awarded_at DESC").
				Offset(offset).
				Limit(limit).
				Find(&winners).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": winners, "count": len(winners)})
		}).
		PATCH("/winners/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateWinnerStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var winner models.RaffleWinner
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Preload("User").
					Preload("Raffle").
					First(&winner, params.ID).
					Error; err != nil {
					return err
				}
				updates := &models.RaffleWinner{
					Status:       types.FulfillmentStatus(body.Status),
					TrackingLink: body.TrackingLink,
				}
				return tx.
					Model(&models.RaffleWinner{}).
					Where("id = ?", params.ID).
					Updates(updates).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "winner not found"})
				return
			}
			go func() {
				tracking := ""
				if body.TrackingLink != nil {
					tracking = *body.TrackingLink
				}
				if err := notifier.NotifyRewardStatus(winner.User.Email, winner.Raffle.Title, body.Status, tracking); err != nil {
					log.Printf("Error sending reward status email for winner %d: %s\n", winner.ID, err.Error())
				}
			}()
			ctx.Status(http.StatusOK)
		}).
		POST("/promocodes", func(ctx *gin.Context) {
			var body types.CreatePromoRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			expiry, err := utils.ParseDate(body.ExpiryDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			promo := models.PromoCode{
				Code:       body.Code,
				Discount:   body.Discount,
				TotalUses:  body.TotalUses,
				ExpiryDate: expiry,
				OwnerID:    body.OwnerID,
			}
			if body.Visibility != "" {
				promo.Visibility = types.PromoVisibility(body.Visibility)
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&promo).Error
			})
			if err != nil {
				log.Printf("Error creating promo code: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": promo})
		}).
		GET("/promocodes", func(ctx *gin.Context) {
			offset, limit := utils.Pagination(ctx)
			db := db.GetDb()
			var promos []models.PromoCode
			err := db.
				Where("is_deleted = ?", false).
				Order("created_at DESC").
				Offset(offset).
				Limit(limit).
				Find(&promos).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": promos, "count": len(promos)})
		}).
		DELETE("/promocodes/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.PromoCode{}).
					Where("id = ?", params.ID).
					Updates(map[string]any{
						"is_deleted": true,
						"status":     types.PROMO_DISABLED,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PATCH("/users/:id/block", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.User{}).
					Where("id = ?", params.ID).
					Update("is_blocked", true)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return gorm.ErrRecordNotFound
				}
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
