package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) (*ListingRepository, error) {
	col := db.Collection("listings")
	_, err := col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "host", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, err
	}
	return &ListingRepository{col: col}, nil
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ListingRepository) ByHost(ctx context.Context, host domainuser.ID) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"host": string(host)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

// Search translates the conjunctive filters into one Mongo query and pages
// with skip/limit, newest-created first.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if opts.Location != "" {
		filter["location"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(opts.Location), Options: "i"}}
	}
	price := bson.M{}
	if opts.MinPrice != nil {
		price["$gte"] = *opts.MinPrice
	}
	if opts.MaxPrice != nil {
		price["$lte"] = *opts.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if opts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern}},
			bson.M{"description": bson.M{"$regex": pattern}},
		}
	}
	if opts.HasDateFilter() {
		filter["availability"] = bson.M{"$elemMatch": bson.M{
			"start": bson.M{"$lte": opts.Start.UnixMilli()},
			"end":   bson.M{"$gte": opts.End.UnixMilli()},
		}}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.PageSize))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	items, err := decodeListings(ctx, cursor)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domainlistings.Listing, error) {
	defer cursor.Close(ctx)
	out := make([]*domainlistings.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type listingDocument struct {
	ID           string           `bson:"_id"`
	Host         string           `bson:"host"`
	Title        string           `bson:"title"`
	Description  string           `bson:"description"`
	Price        float64          `bson:"price"`
	Location     string           `bson:"location"`
	Images       []string         `bson:"images"`
	Availability []windowDocument `bson:"availability"`
	CreatedAt    int64            `bson:"created_at"`
	UpdatedAt    int64            `bson:"updated_at"`
}

type windowDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	windows := make([]windowDocument, 0, len(l.Availability))
	for _, w := range l.Availability {
		windows = append(windows, windowDocument{Start: w.Start.UnixMilli(), End: w.End.UnixMilli()})
	}
	return listingDocument{
		ID:           string(l.ID),
		Host:         string(l.Host),
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		Location:     l.Location,
		Images:       append([]string(nil), l.Images...),
		Availability: windows,
		CreatedAt:    l.CreatedAt.UnixMilli(),
		UpdatedAt:    l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toEntity() *domainlistings.Listing {
	windows := make([]domainlistings.AvailabilityWindow, 0, len(d.Availability))
	for _, w := range d.Availability {
		windows = append(windows, domainlistings.AvailabilityWindow{
			Start: timestampToTime(w.Start),
			End:   timestampToTime(w.End),
		})
	}
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Host:         domainuser.ID(d.Host),
		Title:        d.Title,
		Description:  d.Description,
		Price:        d.Price,
		Location:     d.Location,
		Images:       append([]string(nil), d.Images...),
		Availability: windows,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
