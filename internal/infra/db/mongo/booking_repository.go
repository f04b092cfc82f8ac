package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	domainuser "stayhub/internal/domain/user"
)

// BookingRepository persists bookings. CreateIfNoOverlap serializes the
// check-then-insert per listing with a keyed mutex, so two racing requests
// for the same listing cannot both pass the overlap query.
type BookingRepository struct {
	col   *mongo.Collection
	locks *keyedMutex
}

func NewBookingRepository(db *mongo.Database) (*BookingRepository, error) {
	col := db.Collection("bookings")
	_, err := col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "check_in", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &BookingRepository{
		col:   col,
		locks: newKeyedMutex(),
	}, nil
}

func (r *BookingRepository) CreateIfNoOverlap(ctx context.Context, b *domainbooking.Booking) error {
	r.locks.Lock(string(b.ListingID))
	defer r.locks.Unlock(string(b.ListingID))

	filter := bson.M{
		"listing_id": string(b.ListingID),
		"check_in":   bson.M{"$lt": b.Range.CheckOut.UnixMilli()},
		"check_out":  bson.M{"$gt": b.Range.CheckIn.UnixMilli()},
	}
	err := r.col.FindOne(ctx, filter).Err()
	if err == nil {
		return domainbooking.ErrDatesConflict
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	_, err = r.col.InsertOne(ctx, newBookingDocument(b))
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": string(userID)})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) ListByListings(ctx context.Context, listingIDs []domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	ids := make([]string, 0, len(listingIDs))
	for _, id := range listingIDs {
		ids = append(ids, string(id))
	}
	return r.find(ctx, bson.M{"listing_id": bson.M{"$in": ids}})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID         string  `bson:"_id"`
	UserID     string  `bson:"user_id"`
	ListingID  string  `bson:"listing_id"`
	CheckIn    int64   `bson:"check_in"`
	CheckOut   int64   `bson:"check_out"`
	TotalPrice float64 `bson:"total_price"`
	CreatedAt  int64   `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		UserID:     string(b.UserID),
		ListingID:  string(b.ListingID),
		CheckIn:    b.Range.CheckIn.UnixMilli(),
		CheckOut:   b.Range.CheckOut.UnixMilli(),
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toEntity() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		UserID:    domainuser.ID(d.UserID),
		ListingID: domainlistings.ListingID(d.ListingID),
		Range: daterange.DateRange{
			CheckIn:  timestampToTime(d.CheckIn),
			CheckOut: timestampToTime(d.CheckOut),
		},
		TotalPrice: d.TotalPrice,
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
