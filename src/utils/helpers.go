package utils

import (
	"log"
	"os"
	"rbs/src/config"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gosimple/slug"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(int(userID)),
		"username": email,
		"role":     role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	if err != nil {
		log.Printf("Error signing token: %s\n", err.Error())
		return "", err
	}
	return signed, nil
}

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// Slugify produces a URL-safe identifier from a raffle title.
func Slugify(title string) string {
	return slug.Make(title)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(config.TIME_PARSE_FORMAT, value)
}

// Pagination reads page/page_size query params with sane bounds.
func Pagination(ctx *gin.Context) (offset int, limit int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = (page - 1) * limit
	return offset, limit
}
