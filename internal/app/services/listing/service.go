package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

var (
	ErrNotConfigured = errors.New("listing: service not configured")
	ErrMediaRequired = errors.New("listing: at least one image is required")
	ErrUnknownImage  = errors.New("listing: kept image does not belong to the listing")
	ErrMediaUpload   = errors.New("listing: media upload failed")
)

// MediaStore persists listing images and serves them via public URLs.
type MediaStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
	Remove(ctx context.Context, publicURL string) error
}

type EventPublisher interface {
	ListingCreated(ctx context.Context, listingID, hostID string)
	ListingDeleted(ctx context.Context, listingID, hostID string)
}

// MediaFile is an uploaded image, already read into memory and
// content-type checked by the transport layer.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type Service struct {
	Listings domainlistings.Repository
	Users    domainuser.Repository
	Media    MediaStore
	Events   EventPublisher
	Logger   *slog.Logger
}

type CreateParams struct {
	HostID       domainuser.ID
	Title        string
	Description  string
	Price        float64
	Location     string
	Availability []domainlistings.AvailabilityWindow
	Media        []MediaFile
}

type UpdateParams struct {
	ListingID    domainlistings.ListingID
	HostID       domainuser.ID
	Title        *string
	Description  *string
	Price        *float64
	Location     *string
	Availability []domainlistings.AvailabilityWindow
	// KeptImages nil means the current images stay untouched; non-nil
	// reconciles the image set to exactly these URLs plus NewMedia.
	KeptImages *[]string
	NewMedia   []MediaFile
}

// Detail pairs a listing with its resolved host for single-listing reads.
type Detail struct {
	Listing *domainlistings.Listing
	Host    *domainuser.User
}

type Page struct {
	Items    []*domainlistings.Listing
	Total    int
	Page     int
	PageSize int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainlistings.Listing, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if len(params.Media) == 0 {
		return nil, ErrMediaRequired
	}
	now := time.Now()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(uuid.NewString()),
		Host:         params.HostID,
		Title:        params.Title,
		Description:  params.Description,
		Price:        params.Price,
		Location:     params.Location,
		Availability: params.Availability,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	urls, err := s.uploadMedia(ctx, listing.ID, params.Media)
	if err != nil {
		return nil, err
	}
	listing.ReplaceImages(urls, now)
	if err := s.Listings.Save(ctx, listing); err != nil {
		s.removeMedia(ctx, urls)
		return nil, err
	}
	if s.Events != nil {
		s.Events.ListingCreated(ctx, string(listing.ID), string(listing.Host))
	}
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", listing.ID, "host_id", listing.Host, "images", len(urls))
	}
	return listing, nil
}

// Update applies partial field changes and reconciles the image set. The
// updated record is saved before any old media is deleted, so a failed
// delete can never orphan the listing itself.
func (s *Service) Update(ctx context.Context, params UpdateParams) (*domainlistings.Listing, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	listing, err := s.ownedListing(ctx, params.ListingID, params.HostID)
	if err != nil {
		return nil, err
	}
	kept := listing.Images
	if params.KeptImages != nil {
		current := make(map[string]bool, len(listing.Images))
		for _, url := range listing.Images {
			current[url] = true
		}
		for _, url := range *params.KeptImages {
			if !current[url] {
				return nil, ErrUnknownImage
			}
		}
		kept = *params.KeptImages
	}
	uploaded, err := s.uploadMedia(ctx, listing.ID, params.NewMedia)
	if err != nil {
		return nil, err
	}
	images := append(append([]string(nil), kept...), uploaded...)
	if len(images) == 0 {
		s.removeMedia(ctx, uploaded)
		return nil, ErrMediaRequired
	}

	now := time.Now()
	previous := append([]string(nil), listing.Images...)
	if err := listing.Apply(domainlistings.UpdateParams{
		Title:        params.Title,
		Description:  params.Description,
		Price:        params.Price,
		Location:     params.Location,
		Availability: params.Availability,
		Now:          now,
	}); err != nil {
		s.removeMedia(ctx, uploaded)
		return nil, err
	}
	listing.ReplaceImages(images, now)
	if err := s.Listings.Save(ctx, listing); err != nil {
		s.removeMedia(ctx, uploaded)
		return nil, err
	}

	retained := make(map[string]bool, len(images))
	for _, url := range images {
		retained[url] = true
	}
	var dropped []string
	for _, url := range previous {
		if !retained[url] {
			dropped = append(dropped, url)
		}
	}
	s.removeMedia(ctx, dropped)
	if s.Logger != nil {
		s.Logger.Info("listing updated", "listing_id", listing.ID, "added", len(uploaded), "removed", len(dropped))
	}
	return listing, nil
}

func (s *Service) Delete(ctx context.Context, listingID domainlistings.ListingID, hostID domainuser.ID) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	listing, err := s.ownedListing(ctx, listingID, hostID)
	if err != nil {
		return err
	}
	if err := s.Listings.Delete(ctx, listing.ID); err != nil {
		return err
	}
	s.removeMedia(ctx, listing.Images)
	if s.Events != nil {
		s.Events.ListingDeleted(ctx, string(listing.ID), string(listing.Host))
	}
	if s.Logger != nil {
		s.Logger.Info("listing deleted", "listing_id", listing.ID, "host_id", listing.Host)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, listingID domainlistings.ListingID) (*Detail, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	listing, err := s.Listings.ByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	detail := &Detail{Listing: listing}
	host, err := s.Users.ByID(ctx, listing.Host)
	if err == nil {
		detail.Host = host
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	return detail, nil
}

func (s *Service) Query(ctx context.Context, params domainlistings.SearchParams) (*Page, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	params = params.Normalized()
	result, err := s.Listings.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:    result.Items,
		Total:    result.Total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

func (s *Service) HostListings(ctx context.Context, hostID domainuser.ID) ([]*domainlistings.Listing, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Listings.ByHost(ctx, hostID)
}

func (s *Service) ownedListing(ctx context.Context, listingID domainlistings.ListingID, hostID domainuser.ID) (*domainlistings.Listing, error) {
	listing, err := s.Listings.ByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(hostID) {
		return nil, domainlistings.ErrNotOwner
	}
	return listing, nil
}

// uploadMedia stores every file or none: a failed upload rolls back the
// ones that already went through.
func (s *Service) uploadMedia(ctx context.Context, listingID domainlistings.ListingID, files []MediaFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		key := mediaKey(listingID, file.Name)
		url, err := s.Media.Upload(ctx, key, bytes.NewReader(file.Data), file.ContentType)
		if err != nil {
			s.removeMedia(ctx, urls)
			return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// removeMedia is best effort; storage failures are logged and swallowed.
func (s *Service) removeMedia(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.Media.Remove(ctx, url); err != nil && s.Logger != nil {
			s.Logger.Warn("media cleanup failed", "url", url, "error", err)
		}
	}
}

func mediaKey(listingID domainlistings.ListingID, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 5 {
		ext = ""
	}
	return fmt.Sprintf("listings/%s/%s%s", listingID, uuid.NewString(), ext)
}

func (s *Service) ensureDependencies() error {
	if s.Listings == nil || s.Users == nil || s.Media == nil {
		return ErrNotConfigured
	}
	return nil
}
