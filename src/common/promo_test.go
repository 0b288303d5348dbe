package common

import (
	"rbs/src/models"
	"rbs/src/types"
	"time"
)

func (s *CommonTestSuite) seedPromo(code string, discount, uses uint, expiry time.Time) models.PromoCode {
	promo := models.PromoCode{
		Code:       code,
		Discount:   discount,
		TotalUses:  uses,
		ExpiryDate: expiry,
	}
	s.Require().NoError(s.DB.Create(&promo).Error)
	return promo
}

func (s *CommonTestSuite) TestQuotePromo() {
	s.seedPromo("SAVE20", 20, 5, time.Now().Add(time.Hour))

	quote, err := QuotePromo(s.DB, "SAVE20", 1, 100)
	s.Require().NoError(err)
	s.Equal(int64(100), quote.Subtotal)
	s.Equal(int64(20), quote.Discount)
	s.Equal(int64(80), quote.Total)

	_, err = QuotePromo(s.DB, "NOPE", 1, 100)
	s.ErrorIs(err, ErrPromoUnavailable)
}

func (s *CommonTestSuite) TestQuotePromoExpired() {
	s.seedPromo("OLD", 10, 5, time.Now().Add(-time.Hour))

	_, err := QuotePromo(s.DB, "OLD", 1, 100)
	s.ErrorIs(err, ErrPromoExpired)
}

func (s *CommonTestSuite) TestQuotePromoExhausted() {
	promo := s.seedPromo("USEDUP", 10, 2, time.Now().Add(time.Hour))
	s.Require().NoError(s.DB.Model(&promo).UpdateColumn("promo_used", 2).Error)

	_, err := QuotePromo(s.DB, "USEDUP", 1, 100)
	s.ErrorIs(err, ErrPromoExhausted)
}

func (s *CommonTestSuite) TestQuotePromoPrivate() {
	owner := s.seedUser("owner@example.com", 0)
	stranger := s.seedUser("stranger@example.com", 0)
	promo := models.PromoCode{
		Code:       "MINE",
		Discount:   50,
		TotalUses:  1,
		ExpiryDate: time.Now().Add(time.Hour),
		Visibility: types.PROMO_PRIVATE,
		OwnerID:    &owner.ID,
	}
	s.Require().NoError(s.DB.Create(&promo).Error)

	_, err := QuotePromo(s.DB, "MINE", stranger.ID, 100)
	s.ErrorIs(err, ErrPromoNotAllowed)

	quote, err := QuotePromo(s.DB, "MINE", owner.ID, 100)
	s.Require().NoError(err)
	s.Equal(int64(50), quote.Discount)
}

func (s *CommonTestSuite) TestConsumePromo() {
	promo := s.seedPromo("TWICE", 10, 2, time.Now().Add(time.Hour))

	s.Require().NoError(ConsumePromo(s.DB, promo.ID))

	var mid models.PromoCode
	s.Require().NoError(s.DB.First(&mid, promo.ID).Error)
	s.Equal(uint(1), mid.PromoUsed)
	s.Equal(types.PROMO_AVAILABLE, mid.Status)

	s.Require().NoError(ConsumePromo(s.DB, promo.ID))

	var after models.PromoCode
	s.Require().NoError(s.DB.First(&after, promo.ID).Error)
	s.Equal(uint(2), after.PromoUsed)
	s.Equal(types.PROMO_EXHAUSTED, after.Status)

	err := ConsumePromo(s.DB, promo.ID)
	s.ErrorIs(err, ErrPromoExhausted)
}

func (s *CommonTestSuite) TestExpirePromosSweep() {
	stale := s.seedPromo("STALE", 10, 5, time.Now().Add(-time.Minute))
	fresh := s.seedPromo("FRESH", 10, 5, time.Now().Add(time.Hour))

	ExpirePromos()

	var after models.PromoCode
	s.Require().NoError(s.DB.First(&after, stale.ID).Error)
	s.Equal(types.PROMO_EXPIRED, after.Status)

	var kept models.PromoCode
	s.Require().NoError(s.DB.First(&kept, fresh.ID).Error)
	s.Equal(types.PROMO_AVAILABLE, kept.Status)
}
