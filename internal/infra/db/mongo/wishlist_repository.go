package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
	domainwishlist "stayhub/internal/domain/wishlist"
)

// WishlistRepository stores one document per user, keyed by the user id.
type WishlistRepository struct {
	col *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{col: db.Collection("wishlists")}
}

func (r *WishlistRepository) ByUser(ctx context.Context, userID domainuser.ID) (*domainwishlist.Wishlist, error) {
	var doc wishlistDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(userID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *WishlistRepository) Save(ctx context.Context, w *domainwishlist.Wishlist) error {
	doc := newWishlistDocument(w)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.UserID}, bson.M{"$set": doc}, opts)
	return err
}

type wishlistDocument struct {
	UserID    string   `bson:"_id"`
	Listings  []string `bson:"listings"`
	CreatedAt int64    `bson:"created_at"`
	UpdatedAt int64    `bson:"updated_at"`
}

func newWishlistDocument(w *domainwishlist.Wishlist) wishlistDocument {
	ids := make([]string, 0, len(w.Listings))
	for _, id := range w.Listings {
		ids = append(ids, string(id))
	}
	return wishlistDocument{
		UserID:    string(w.UserID),
		Listings:  ids,
		CreatedAt: w.CreatedAt.UnixMilli(),
		UpdatedAt: w.UpdatedAt.UnixMilli(),
	}
}

func (d wishlistDocument) toEntity() *domainwishlist.Wishlist {
	ids := make([]domainlistings.ListingID, 0, len(d.Listings))
	for _, id := range d.Listings {
		ids = append(ids, domainlistings.ListingID(id))
	}
	return &domainwishlist.Wishlist{
		UserID:    domainuser.ID(d.UserID),
		Listings:  ids,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

var _ domainwishlist.Repository = (*WishlistRepository)(nil)
