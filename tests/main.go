package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"droply/database"
	"droply/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Seeds the local database with open shipments carrying competing bids, plus
// a funded wallet per simulated shipper, for manual testing against a dev
// stack. Wipes the shipments and wallets collections first.
func main() {
	database.InitDB()
	client := database.MongoClient
	db := client.Database("droply")
	shipmentColl := db.Collection("shipments")
	walletColl := db.Collection("wallets")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := shipmentColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear shipments collection: %v", err)
	}
	if _, err := walletColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear wallets collection: %v", err)
	}

	titles := []string{
		"Box of ceramic mugs", "Birthday cake (handle flat)", "Spare laptop charger",
		"Framed canvas print", "Groceries from Nandini Stores", "Set of legal documents",
		"Replacement phone screen", "Two kilograms of mangoes",
	}
	weightClasses := []string{"small", "medium", "heavy"}
	vehicles := []string{"bicycle", "scooter", "bike", "mini-van"}

	shippersCount := 5
	shipmentsPerShipper := 4
	couriersCount := 8

	couriers := make([]string, couriersCount)
	for i := range couriers {
		couriers[i] = fmt.Sprintf("courier-%03d", i+1)
	}

	now := time.Now()
	totalShipments := 0
	totalBids := 0

	for s := 0; s < shippersCount; s++ {
		ownerID := fmt.Sprintf("shipper-%03d", s+1)

		// Fund the shipper's wallet so wallet-method settlements work.
		opening := float64(randomInt(500, 5000))
		wallet := models.Wallet{
			UserID:           ownerID,
			Balance:          opening,
			AvailableBalance: opening,
			TotalEarned:      opening,
			Transactions: []models.Transaction{{
				ID:          uuid.New().String(),
				Type:        models.TxnTypeCredit,
				Amount:      opening,
				Method:      "seed",
				ReferenceID: "seed-funding",
				Description: "seeded opening balance",
				Status:      models.TxnStatusCompleted,
				CreatedAt:   now,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := walletColl.InsertOne(ctx, wallet); err != nil {
			log.Fatalf("Failed to insert wallet for %s: %v", ownerID, err)
		}

		for i := 0; i < shipmentsPerShipper; i++ {
			kind := models.ShipmentKindParcel
			if rand.Intn(3) == 0 {
				kind = models.ShipmentKindOrder
			}

			shipment := models.Shipment{
				ID:            uuid.New().String(),
				Kind:          kind,
				OwnerID:       ownerID,
				Title:         titles[rand.Intn(len(titles))],
				DeclaredValue: float64(randomInt(100, 3000)),
				WeightClass:   weightClasses[rand.Intn(len(weightClasses))],
				PickupAddrID:  fmt.Sprintf("addr-%03d", randomInt(1, 50)),
				DropAddrID:    fmt.Sprintf("addr-%03d", randomInt(51, 99)),
				Status:        models.ShipmentStatusOpen,
				PayoutStatus:  models.PayoutStatusPending,
				Bids:          []models.Bid{},
				CreatedAt:     now,
				UpdatedAt:     now,
			}

			// Zero to four competing bids per shipment.
			bidCount := rand.Intn(5)
			perm := rand.Perm(couriersCount)
			for b := 0; b < bidCount; b++ {
				shipment.Bids = append(shipment.Bids, models.Bid{
					ID:            uuid.New().String(),
					CourierID:     couriers[perm[b]],
					Vehicle:       vehicles[rand.Intn(len(vehicles))],
					TentativeTime: now.Add(time.Duration(randomInt(1, 48)) * time.Hour),
					Price:         float64(randomInt(40, 400)),
					Status:        models.BidStatusAccepted,
					CreatedAt:     now,
				})
			}
			if bidCount > 0 {
				shipment.Status = models.ShipmentStatusBidAccepted
			}

			if _, err := shipmentColl.InsertOne(ctx, shipment); err != nil {
				log.Fatalf("Failed to insert shipment: %v", err)
			}
			totalShipments++
			totalBids += bidCount
		}
	}

	fmt.Printf("Seeded %d shipments (%d bids) across %d shippers, %d couriers\n",
		totalShipments, totalBids, shippersCount, couriersCount)
}

func randomInt(min, max int) int {
	return rand.Intn(max-min+1) + min
}
