package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MerchantDirectory implements ports.MerchantDirectory over the platform's
// merchants collection. Only wallet fields are ever written.
type MerchantDirectory struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewMerchantDirectory(coll *mongo.Collection, timeout time.Duration) *MerchantDirectory {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MerchantDirectory{coll: coll, timeout: timeout, now: time.Now}
}

func (d *MerchantDirectory) Get(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"name": 1, "status": 1, "walletAddress": 1, "walletEnabled": 1, "updatedAt": 1,
	})

	var m domain.Merchant
	err := d.coll.FindOne(ctx, bson.M{"_id": merchantID}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find merchant: %w", err)
	}
	return &m, nil
}

func (d *MerchantDirectory) SetWallet(ctx context.Context, merchantID string, address common.Address, enabled bool) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := d.coll.UpdateOne(ctx, bson.M{"_id": merchantID}, bson.M{
		"$set": bson.M{
			"walletAddress": address.Hex(),
			"walletEnabled": enabled,
			"updatedAt":     d.now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("update merchant wallet: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperror.ErrMerchantNotFound()
	}
	return nil
}
