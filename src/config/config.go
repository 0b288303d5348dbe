package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// CartTTL is how long reserved slots stay held in a cart before the
// expiry sweep releases them. Defaults to 10 minutes.
func CartTTL() time.Duration {
	raw := os.Getenv("CART_TTL_MINUTES")
	mins, err := strconv.Atoi(raw)
	if err != nil || mins <= 0 {
		mins = 10
	}
	return time.Duration(mins) * time.Minute
}

// PurchaseFlowName selects the checkout variant wired at boot. Valid
// values are "direct" and "wallet".
func PurchaseFlowName() string {
	flow := os.Getenv("PURCHASE_FLOW")
	if flow == "" {
		flow = "wallet"
	}
	return flow
}
