package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"rbs/src/db"
	"rbs/src/lib"
	"rbs/src/models"
	"rbs/src/types"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	UserID    uint
	RaffleIDs []uint
	Bucks     int64
	PromoCode *string
}

type CheckoutResult struct {
	TransactionID string `json:"transaction_id"`
	RequestID     string `json:"request_id"`
	ClientSecret  string `json:"client_secret,omitempty"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
}

// PurchaseFlow is a checkout variant. The direct flow charges the card
// for raffle slots; the wallet flow sells balance that slots are later
// bought with. Exactly one flow is wired at boot via PURCHASE_FLOW.
type PurchaseFlow interface {
	Name() string
	Checkout(ctx context.Context, in *CheckoutInput) (*CheckoutResult, error)
	ApplyPaymentSucceeded(requestID, paymentIntentID string) error
}

func NewPurchaseFlow(name string, inv *Inventory, carts *CartService, entries *EntryService) PurchaseFlow {
	switch name {
	case "direct":
		return &DirectPurchaseFlow{inv: inv, carts: carts, entries: entries}
	default:
		return &WalletTopUpFlow{}
	}
}

func cacheTransactionRef(requestID, txnID string) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if _, err := rd.SetEx(context.Background(), requestID, txnID, 10*time.Minute).Result(); err != nil {
		log.Printf("Error caching value [%s]: %s\n", txnID, err.Error())
	}
}

// ResolveTransactionFailure moves a pending transaction to a terminal
// failure status. Already-settled transactions are left alone.
func ResolveTransactionFailure(requestID string, status types.TransactionStatus, paymentIntentID string) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": status}
		if paymentIntentID != "" {
			updates["payment_intent_id"] = paymentIntentID
		}
		res := tx.
			Model(&models.Transaction{}).
			Where("reference_id = ? AND status = ?", requestID, types.TRANSACTION_PENDING).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Printf("Transaction [%s] already settled, skipping %s\n", requestID, status)
		}
		return nil
	})
}

// DirectPurchaseFlow charges the card for the selected raffles and
// converts the payment into entries when the webhook confirms it.
type DirectPurchaseFlow struct {
	inv     *Inventory
	carts   *CartService
	entries *EntryService
}

func (f *DirectPurchaseFlow) Name() string { return "direct" }

func (f *DirectPurchaseFlow) Checkout(ctx context.Context, in *CheckoutInput) (*CheckoutResult, error) {
	if len(in.RaffleIDs) == 0 {
		return nil, fmt.Errorf("no raffles selected")
	}
	conn := db.GetDb()
	requestID := uuid.NewString()
	var txn *models.Transaction
	var subtotal int64
	var promoID *uint
	var discount int64
	err := conn.Transaction(func(tx *gorm.DB) error {
		var dupes int64
		err := tx.
			Model(&models.Entry{}).
			Where("user_id = ? AND raffle_id IN ? AND status = ?", in.UserID, in.RaffleIDs, types.ENTRY_ACTIVE).
			Count(&dupes).
			Error
		if err != nil {
			return err
		}
		if dupes > 0 {
			return ErrDuplicateEntry
		}
		var raffles []models.Raffle
		err = tx.
			Where("id IN ? AND is_deleted = ?", in.RaffleIDs, false).
			Find(&raffles).
			Error
		if err != nil {
			return err
		}
		if len(raffles) != len(in.RaffleIDs) {
			return ErrNotFound
		}
		for _, r := range raffles {
			subtotal += r.Price
		}
		if in.PromoCode != nil && *in.PromoCode != "" {
			quote, err := QuotePromo(tx, *in.PromoCode, in.UserID, subtotal)
			if err != nil {
				return err
			}
			promoID = &quote.Promo.ID
			discount = quote.Discount
		}
		ids := types.JSONBArray{}
		for _, id := range in.RaffleIDs {
			ids = append(ids, id)
		}
		txn = &models.Transaction{
			UserID:      in.UserID,
			RaffleIDs:   ids,
			Subtotal:    subtotal,
			Discount:    discount,
			Total:       subtotal - discount,
			Currency:    "usd",
			PromoCodeID: promoID,
			ReferenceID: requestID,
			Status:      types.TRANSACTION_PENDING,
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, err
	}

	sc := lib.GetStripeClient()
	rafflesJSON, _ := json.Marshal(in.RaffleIDs)
	piParams := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(txn.Total),
		Currency: stripe.String("usd"),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.AddMetadata("requestId", requestID)
	piParams.AddMetadata("userId", strconv.Itoa(int(in.UserID)))
	piParams.AddMetadata("raffleIds", string(rafflesJSON))
	pi, err := sc.V1PaymentIntents.Create(ctx, piParams)
	if err != nil {
		log.Printf("Error creating PaymentIntent: %s\n", err.Error())
		return nil, err
	}
	cacheTransactionRef(requestID, txn.ID.String())

	return &CheckoutResult{
		TransactionID: txn.ID.String(),
		RequestID:     requestID,
		ClientSecret:  pi.ClientSecret,
	}, nil
}

func (f *DirectPurchaseFlow) ApplyPaymentSucceeded(requestID, paymentIntentID string) error {
	conn := db.GetDb()
	var published []*models.Raffle
	err := conn.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.
			Where("reference_id = ?", requestID).
			First(&txn).
			Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		res := tx.
			Model(&models.Transaction{}).
			Where("id = ? AND is_processed = ?", txn.ID, false).
			Updates(map[string]any{
				"status":            types.TRANSACTION_SUCCESS,
				"is_processed":      true,
				"payment_intent_id": paymentIntentID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransactionProcessed
		}
		for _, raffleID := range txn.RaffleIDList() {
			var raffle models.Raffle
			if err := tx.First(&raffle, raffleID).Error; err != nil {
				log.Printf("Raffle %d missing while settling [%s], skipping\n", raffleID, requestID)
				continue
			}
			held, err := f.carts.ConsumeHold(tx, txn.UserID, raffleID)
			if err != nil {
				return err
			}
			if !held {
				reserved, err := f.inv.ReserveSlot(tx, raffleID)
				if err != nil {
					if err == ErrNotAvailable {
						log.Printf("Raffle %d sold out before settlement of [%s], skipping\n", raffleID, requestID)
						continue
					}
					return err
				}
				raffle = *reserved
			}
			if _, err := f.entries.RecordPurchase(tx, txn.UserID, &raffle, &txn.ID, types.PAYMENT_CARD, raffle.Price); err != nil {
				if err == ErrDuplicateEntry {
					log.Printf("Duplicate entry for user %d raffle %d on [%s], releasing slot\n", txn.UserID, raffleID, requestID)
					if _, err := f.inv.ReleaseSlot(tx, raffleID); err != nil {
						return err
					}
					continue
				}
				return err
			}
			published = append(published, &raffle)
		}
		if txn.PromoCodeID != nil {
			if err := ConsumePromo(tx, *txn.PromoCodeID); err != nil {
				return err
			}
		}
		// Checkout empties the cart. Holds on raffles that were not
		// part of the payment give their slots back first.
		var residual []models.CartItem
		err = tx.
			Where("cart_id IN (?)",
				tx.Session(&gorm.Session{NewDB: true}).
					Model(&models.Cart{}).
					Select("id").
					Where("user_id = ?", txn.UserID),
			).
			Find(&residual).
			Error
		if err != nil {
			return err
		}
		for _, item := range residual {
			released, err := f.inv.ReleaseSlot(tx, item.RaffleID)
			if err != nil {
				return err
			}
			published = append(published, released)
		}
		return f.carts.ClearCart(tx, txn.UserID)
	})
	if err != nil {
		return err
	}
	for _, raffle := range published {
		f.inv.PublishSlots(raffle)
	}
	return nil
}

// WalletTopUpFlow sells raffle bucks through a hosted checkout
// session. Slots are then purchased from the balance.
type WalletTopUpFlow struct{}

func (f *WalletTopUpFlow) Name() string { return "wallet" }

func (f *WalletTopUpFlow) Checkout(ctx context.Context, in *CheckoutInput) (*CheckoutResult, error) {
	if in.Bucks <= 0 {
		return nil, fmt.Errorf("top-up amount must be positive")
	}
	conn := db.GetDb()
	requestID := uuid.NewString()
	var promoID *uint
	var discount int64
	err := conn.Transaction(func(tx *gorm.DB) error {
		if in.PromoCode != nil && *in.PromoCode != "" {
			quote, err := QuotePromo(tx, *in.PromoCode, in.UserID, in.Bucks)
			if err != nil {
				return err
			}
			promoID = &quote.Promo.ID
			discount = quote.Discount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	total := in.Bucks - discount

	sc := lib.GetStripeClient()
	successUrl := fmt.Sprintf("%s/wallet/callback/success", os.Getenv("APP_HOST"))
	piParams := &stripe.CheckoutSessionCreatePaymentIntentDataParams{}
	piParams.AddMetadata("requestId", requestID)
	piParams.AddMetadata("userId", strconv.Itoa(int(in.UserID)))
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(successUrl),
		UIMode:            stripe.String("hosted"),
		Mode:              stripe.String("payment"),
		PaymentIntentData: piParams,
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(total),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String("Raffle Bucks"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"requestId": requestID,
			"userId":    strconv.Itoa(int(in.UserID)),
		},
	}
	checkoutSession, err := sc.V1CheckoutSessions.Create(ctx, &createParams)
	if err != nil {
		log.Printf("Error creating CheckoutSession: %s\n", err.Error())
		return nil, err
	}
	log.Printf("CheckoutSessionID: %s\n", checkoutSession.ID)

	var txnID string
	err = conn.Transaction(func(tx *gorm.DB) error {
		txn := &models.Transaction{
			UserID:            in.UserID,
			Subtotal:          in.Bucks,
			Discount:          discount,
			Total:             total,
			Bucks:             in.Bucks,
			Currency:          "usd",
			PromoCodeID:       promoID,
			CheckoutSessionId: &checkoutSession.ID,
			ReferenceID:       requestID,
			Status:            types.TRANSACTION_PENDING,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		txnID = txn.ID.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	cacheTransactionRef(requestID, txnID)

	return &CheckoutResult{
		TransactionID: txnID,
		RequestID:     requestID,
		CheckoutURL:   checkoutSession.URL,
	}, nil
}

func (f *WalletTopUpFlow) ApplyPaymentSucceeded(requestID, paymentIntentID string) error {
	conn := db.GetDb()
	return conn.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		err := tx.
			Where("reference_id = ?", requestID).
			First(&txn).
			Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrNotFound
			}
			return err
		}
		res := tx.
			Model(&models.Transaction{}).
			Where("id = ? AND is_processed = ?", txn.ID, false).
			Updates(map[string]any{
				"status":            types.TRANSACTION_SUCCESS,
				"is_processed":      true,
				"payment_intent_id": paymentIntentID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransactionProcessed
		}
		if err := CreditBucks(tx, txn.UserID, txn.Bucks); err != nil {
			return err
		}
		if txn.PromoCodeID != nil {
			if err := ConsumePromo(tx, *txn.PromoCodeID); err != nil {
				return err
			}
		}
		return nil
	})
}
