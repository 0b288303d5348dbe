package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any
type Metadata map[string]any

func jsonbBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("type assertion to []byte failed")
	}
}

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *Metadata) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type RaffleStatus string

const (
	RAFFLE_INACTIVE  RaffleStatus = "INACTIVE"
	RAFFLE_ACTIVE    RaffleStatus = "ACTIVE"
	RAFFLE_COMPLETED RaffleStatus = "COMPLETED"
	RAFFLE_EXPIRED   RaffleStatus = "EXPIRED"
)

type RewardType string

const (
	REWARD_DIGITAL  RewardType = "DIGITAL"
	REWARD_PHYSICAL RewardType = "PHYSICAL"
)

type EntryStatus string

const (
	ENTRY_ACTIVE   EntryStatus = "ACTIVE"
	ENTRY_REFUNDED EntryStatus = "REFUNDED"
	ENTRY_CANCELED EntryStatus = "CANCELED"
)

type EntryResult string

const (
	RESULT_TBD  EntryResult = "TBD"
	RESULT_WIN  EntryResult = "WIN"
	RESULT_LOSS EntryResult = "LOSS"
)

type OrderStatus string

const (
	ORDER_PENDING   OrderStatus = "PENDING"
	ORDER_CONFIRMED OrderStatus = "CONFIRMED"
	ORDER_REFUNDED  OrderStatus = "REFUNDED"
	ORDER_CANCELED  OrderStatus = "CANCELED"
)

type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "PENDING"
	TRANSACTION_SUCCESS  TransactionStatus = "SUCCESS"
	TRANSACTION_FAILED   TransactionStatus = "FAILED"
	TRANSACTION_CANCELED TransactionStatus = "CANCELED"
	TRANSACTION_EXPIRED  TransactionStatus = "EXPIRED"
)

type FulfillmentStatus string

const (
	FULFILLMENT_GRANTED    FulfillmentStatus = "GRANTED"
	FULFILLMENT_CLAIMED    FulfillmentStatus = "CLAIMED"
	FULFILLMENT_PENDING    FulfillmentStatus = "PENDING"
	FULFILLMENT_PROCESSING FulfillmentStatus = "PROCESSING"
	FULFILLMENT_SHIPPED    FulfillmentStatus = "SHIPPED"
	FULFILLMENT_DELIVERED  FulfillmentStatus = "DELIVERED"
	FULFILLMENT_CANCELED   FulfillmentStatus = "CANCELED"
	FULFILLMENT_FAILED     FulfillmentStatus = "FAILED"
)

type PromoStatus string

const (
	PROMO_AVAILABLE PromoStatus = "AVAILABLE"
	PROMO_EXHAUSTED PromoStatus = "EXHAUSTED"
	PROMO_EXPIRED   PromoStatus = "EXPIRED"
	PROMO_DISABLED  PromoStatus = "DISABLED"
)

type PromoVisibility string

const (
	PROMO_PUBLIC  PromoVisibility = "PUBLIC"
	PROMO_PRIVATE PromoVisibility = "PRIVATE"
)

type PaymentSource string

const (
	PAYMENT_WALLET PaymentSource = "WALLET"
	PAYMENT_CARD   PaymentSource = "CARD"
)

type RaffleRewardItem struct {
	Name              string `json:"name" binding:"required"`
	Type              string `json:"type" binding:"required,oneof=DIGITAL PHYSICAL"`
	GiftCardCategory  string `json:"gift_card_category,omitempty"`
	ConsolationPoints int64  `json:"consolation_points,omitempty"`
}

type CreateRaffleRequestBody struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description,omitempty"`
	Price       int64              `json:"price" binding:"required,gt=0"`
	TotalSlots  uint               `json:"total_slots" binding:"required,gt=0"`
	StartDate   string             `json:"start_date" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate     string             `json:"end_date" binding:"required,bookabledate,gtdate=StartDate" time_format:"2006-01-02 15:04:05 -07:00"`
	Rewards     []RaffleRewardItem `json:"rewards" binding:"required,min=1,dive"`
}

type UpdateRaffleRequestBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	TotalSlots  *uint   `json:"total_slots,omitempty" binding:"omitempty,gt=0"`
	EndDate     *string `json:"end_date,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
}

type UpdateRaffleStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=INACTIVE ACTIVE COMPLETED EXPIRED"`
}

type AddToCartRequestBody struct {
	RaffleID uint `json:"raffle" binding:"required"`
}

type CreateCheckoutRequestBody struct {
	RaffleIDs []uint  `json:"raffles,omitempty" binding:"omitempty,min=1"`
	Bucks     int64   `json:"bucks,omitempty" binding:"omitempty,gt=0"`
	PromoCode *string `json:"promo_code,omitempty"`
}

type ApplyPromoRequestBody struct {
	Code     string `json:"code" binding:"required"`
	Subtotal int64  `json:"subtotal" binding:"required,gt=0"`
}

type CreatePromoRequestBody struct {
	Code       string `json:"code" binding:"required"`
	Discount   uint   `json:"discount" binding:"required,gt=0,lte=100"`
	TotalUses  uint   `json:"total_uses" binding:"required,gt=0"`
	ExpiryDate string `json:"expiry_date" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Visibility string `json:"visibility,omitempty" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	OwnerID    *uint  `json:"owner,omitempty"`
}

type UpdateWinnerStatusRequestBody struct {
	Status       string  `json:"status" binding:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CLAIMED CANCELED FAILED"`
	TrackingLink *string `json:"tracking_link,omitempty"`
}

type RegisterUserRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RaffleQueryFilters struct {
	Status     string `form:"status,omitempty"`
	RewardType string `form:"reward_type,omitempty" binding:"omitempty,oneof=DIGITAL PHYSICAL"`
	Page       int    `form:"page,omitempty"`
	PageSize   int    `form:"page_size,omitempty"`
}
