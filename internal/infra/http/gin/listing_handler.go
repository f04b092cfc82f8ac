package ginserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	listingsvc "stayhub/internal/app/services/listing"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

const maxListingImageSizeBytes = 10 << 20

type ListingHTTP interface {
	Create(c *gin.Context)
	All(c *gin.Context)
	Get(c *gin.Context)
	HostListings(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type ListingHandler struct {
	Service *listingsvc.Service
	Logger  *slog.Logger
}

// availabilityPayload mirrors the JSON the client sends inside the
// multipart "availability" field.
type availabilityPayload struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("price")), 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "price must be a number")
		return
	}
	windows, err := parseAvailability(c.PostForm("availability"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	media, err := readImageFiles(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	listing, err := h.Service.Create(c.Request.Context(), listingsvc.CreateParams{
		HostID:       domainuser.ID(p.ID),
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Price:        price,
		Location:     c.PostForm("location"),
		Availability: windows,
		Media:        media,
	})
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Listing created successfully.", dto.NewListingResponse(listing))
}

func (h ListingHandler) All(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	params := domainlistings.SearchParams{
		Location: c.Query("location"),
		Search:   c.Query("search"),
	}
	if v := strings.TrimSpace(c.Query("minPrice")); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinPrice = &price
		}
	}
	if v := strings.TrimSpace(c.Query("maxPrice")); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxPrice = &price
		}
	}
	start, ok, err := parseQueryDate(c.Query("startDate"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "startDate must be an ISO date")
		return
	}
	if ok {
		params.Start = start
	}
	end, ok, err := parseQueryDate(c.Query("endDate"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "endDate must be an ISO date")
		return
	}
	if ok {
		params.End = end
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		params.PageSize = limit
	}
	result, err := h.Service.Query(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Listings fetched successfully.", dto.ListingPage{
		Listings:   dto.NewListingResponses(result.Items),
		Pagination: dto.NewPagination(result.Total, result.Page, result.PageSize),
	})
}

func (h ListingHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	detail, err := h.Service.Get(c.Request.Context(), domainlistings.ListingID(c.Param("id")))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Listing fetched successfully.", dto.NewListingDetail(detail.Listing, detail.Host))
}

func (h ListingHandler) HostListings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.HostListings(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Host listings fetched successfully.", dto.NewListingResponses(items))
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	params := listingsvc.UpdateParams{
		ListingID: domainlistings.ListingID(c.Param("id")),
		HostID:    domainuser.ID(p.ID),
	}
	if v, present := c.GetPostForm("title"); present {
		params.Title = &v
	}
	if v, present := c.GetPostForm("description"); present {
		params.Description = &v
	}
	if v, present := c.GetPostForm("location"); present {
		params.Location = &v
	}
	if v, present := c.GetPostForm("price"); present {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "price must be a number")
			return
		}
		params.Price = &price
	}
	if v, present := c.GetPostForm("availability"); present {
		windows, err := parseAvailability(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		params.Availability = windows
	}
	if v, present := c.GetPostForm("existingImages"); present {
		kept, err := parseExistingImages(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if kept == nil {
			kept = []string{}
		}
		params.KeptImages = &kept
	}
	media, err := readImageFiles(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	params.NewMedia = media

	listing, err := h.Service.Update(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Listing updated successfully.", dto.NewListingResponse(listing))
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	err := h.Service.Delete(c.Request.Context(), domainlistings.ListingID(c.Param("id")), domainuser.ID(p.ID))
	if err != nil {
		respondServiceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Listing deleted successfully.", nil)
}

func parseAvailability(raw string) ([]domainlistings.AvailabilityWindow, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var payload []availabilityPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("availability must be a JSON array of date windows")
	}
	windows := make([]domainlistings.AvailabilityWindow, 0, len(payload))
	for _, w := range payload {
		windows = append(windows, domainlistings.AvailabilityWindow{Start: w.Start, End: w.End})
	}
	return windows, nil
}

// parseQueryDate accepts full RFC 3339 timestamps and plain YYYY-MM-DD
// dates, the two shapes clients send for search filters.
func parseQueryDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unrecognized date %q", raw)
}

func parseExistingImages(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, fmt.Errorf("existingImages must be a JSON array of URLs")
	}
	return urls, nil
}

// readImageFiles pulls every "images" part out of the multipart form,
// enforcing the size cap and sniffing the real content type.
func readImageFiles(c *gin.Context) ([]listingsvc.MediaFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	files := form.File["images"]
	media := make([]listingsvc.MediaFile, 0, len(files))
	for _, header := range files {
		file, err := readImageFile(header)
		if err != nil {
			return nil, err
		}
		media = append(media, file)
	}
	return media, nil
}

func readImageFile(header *multipart.FileHeader) (listingsvc.MediaFile, error) {
	if header.Size > maxListingImageSizeBytes {
		return listingsvc.MediaFile{}, fmt.Errorf("image %q too large (max %d MB)", header.Filename, maxListingImageSizeBytes/1024/1024)
	}
	file, err := header.Open()
	if err != nil {
		return listingsvc.MediaFile{}, fmt.Errorf("cannot open image %q", header.Filename)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxListingImageSizeBytes+1))
	if err != nil {
		return listingsvc.MediaFile{}, fmt.Errorf("cannot read image %q", header.Filename)
	}
	if len(data) == 0 {
		return listingsvc.MediaFile{}, fmt.Errorf("image %q is empty", header.Filename)
	}
	if len(data) > maxListingImageSizeBytes {
		return listingsvc.MediaFile{}, fmt.Errorf("image %q too large (max %d MB)", header.Filename, maxListingImageSizeBytes/1024/1024)
	}
	contentType := http.DetectContentType(data)
	if !isAllowedImageType(contentType) {
		return listingsvc.MediaFile{}, fmt.Errorf("unsupported image type: %s", contentType)
	}
	return listingsvc.MediaFile{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func isAllowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

var _ ListingHTTP = ListingHandler{}
