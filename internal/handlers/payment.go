package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fastkart/internal/checkout"
	"fastkart/internal/models"
)

type paymentRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

// CreatePayment is the checkout endpoint: it validates the request, runs
// the payment pipeline and answers with the gateway order and the derived
// local order code.
func CreatePayment(db *mongo.Database, svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payment"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req paymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("[%s] invalid body: %v", route, err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing delivery address id"})
			return
		}

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Printf("[%s] no user in session", route)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user ID in the session."})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Printf("[%s] user lookup failed: %v", route, err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user ID in the session."})
			return
		}
		if !user.HasAddress(req.AddressID) {
			log.Printf("[%s] address %s not on user %s", route, req.AddressID, userID.Hex())
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing delivery address id"})
			return
		}

		token, _ := c.Cookie("checkout")

		result, err := svc.Execute(ctx, checkout.Input{
			UserID:         userID,
			AddressID:      req.AddressID,
			Token:          token,
			IdempotencyKey: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
		})
		if err != nil {
			status, body := paymentErrorResponse(err)
			log.Printf("[%s] returning error %d: %v", route, status, err)
			c.JSON(status, body)
			return
		}

		log.Printf("[%s] order %s placed for user %s", route, result.OrderCode, userID.Hex())
		c.JSON(http.StatusOK, result)
	}
}

// paymentErrorResponse maps pipeline errors to the response contract:
// client-caused faults get a 400 with a message, duplicate attempts a 409,
// and everything else an opaque 500.
func paymentErrorResponse(err error) (int, gin.H) {
	var notFound checkout.ProductNotFoundError
	switch {
	case errors.Is(err, checkout.ErrInvalidCheckoutToken):
		return http.StatusBadRequest, gin.H{"message": "Invalid checkout token"}
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, gin.H{"message": "User cart is empty!"}
	case errors.As(err, &notFound):
		return http.StatusBadRequest, gin.H{"message": "The request is missing or contains an invalid product ID"}
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return http.StatusConflict, gin.H{"message": "A checkout is already in progress"}
	case errors.Is(err, checkout.ErrDuplicateSubmission):
		return http.StatusConflict, gin.H{"message": "Duplicate checkout submission"}
	default:
		return http.StatusInternalServerError, gin.H{}
	}
}
