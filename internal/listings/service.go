package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/db/models"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/events"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/maps"
	"github.com/angelmondragon/wanderlust-backend/pkg/storage/s3"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

// User facing messages.
const (
	MsgNotFound        = "The listing you requested does not exist."
	MsgInvalidLocation = "Invalid location. Please try again."
	MsgNotOwner        = "You are not the owner of this listing!"
	MsgPriceTooHigh    = "Price is too high."
)

// MaxPrice is the largest value the numeric(12,2) price column holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// Service exposes listing browsing and lifecycle operations.
type Service interface {
	Index(ctx context.Context, viewerID uuid.UUID, q ListQuery) (*IndexPage, error)
	Get(ctx context.Context, viewerID, listingID uuid.UUID) (*ListingDetail, error)
	EditForm(ctx context.Context, userID, listingID uuid.UUID) (*EditForm, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*ListingDetail, error)
	Update(ctx context.Context, userID, listingID uuid.UUID, input UpdateInput) (*ListingDetail, error)
	Delete(ctx context.Context, userID, listingID uuid.UUID) error
}

// CreateInput holds a validated new listing. Image is optional.
type CreateInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	Country     string
	Category    *enums.ListingCategory
	Image       *s3.Upload
}

// UpdateInput carries the submitted fields. Nil or blank means unchanged,
// except for Title, which may not be blanked.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Location    *string
	Country     *string
	Category    *enums.ListingCategory
	Image       *s3.Upload
}

// Geocoder resolves free text to candidate points.
type Geocoder interface {
	Geocode(ctx context.Context, query string, limit int) ([]maps.Feature, error)
}

// ImageStore keeps uploaded listing images.
type ImageStore interface {
	Upload(ctx context.Context, upload s3.Upload) (types.Image, error)
	Delete(ctx context.Context, filename string) error
}

// LikeReader reports which listings a user has in their wishlist.
type LikeReader interface {
	LikedSet(ctx context.Context, userID uuid.UUID, listingIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type geocodeRecorder interface {
	IncGeocode(outcome string)
}

// ServiceParams wires the listing service.
type ServiceParams struct {
	Repo      *Repository
	Tx        db.TxRunner
	Geocoder  Geocoder
	Images    ImageStore
	Likes     LikeReader
	Publisher events.Publisher
	Cache     DetailCache
	Metrics   geocodeRecorder
	Logger    *logger.Logger

	// ResizeParam enables resized edit form thumbnails.
	ResizeParam string
}

type service struct {
	repo      *Repository
	tx        db.TxRunner
	geocoder  Geocoder
	images    ImageStore
	likes     LikeReader
	publisher events.Publisher
	cache     DetailCache
	metrics   geocodeRecorder
	logg      *logger.Logger

	resizeParam string
}

// NewService constructs the listing service. Cache, Likes, Publisher and
// Metrics are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Geocoder == nil {
		return nil, fmt.Errorf("geocoder required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image store required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		geocoder:  params.Geocoder,
		images:    params.Images,
		likes:     params.Likes,
		publisher: publisher,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logg:      logg,

		resizeParam: params.ResizeParam,
	}, nil
}

func (s *service) Index(ctx context.Context, viewerID uuid.UUID, q ListQuery) (*IndexPage, error) {
	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listings")
	}

	page := &IndexPage{
		Listings:   make([]ListingSummary, 0, len(rows)),
		Categories: enums.ListingCategories(),
		Filters:    q.Filters(),
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		page.Listings = append(page.Listings, summaryFromModel(row))
		ids = append(ids, row.ID)
	}

	liked := s.likedSet(ctx, viewerID, ids)
	for i := range page.Listings {
		page.Listings[i].IsLiked = liked[page.Listings[i].ID]
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, viewerID, listingID uuid.UUID) (*ListingDetail, error) {
	detail, err := s.loadDetail(ctx, listingID)
	if err != nil {
		return nil, err
	}
	detail.IsLiked = s.likedSet(ctx, viewerID, []uuid.UUID{listingID})[listingID]
	return detail, nil
}

func (s *service) EditForm(ctx context.Context, userID, listingID uuid.UUID) (*EditForm, error) {
	detail, err := s.loadDetail(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if detail.Owner.ID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, MsgNotOwner)
	}
	form := &EditForm{Listing: *detail, Categories: enums.ListingCategories()}
	if detail.Image != nil {
		form.ThumbnailURL = detail.Image.Thumbnail(s.resizeParam, editThumbnailWidth)
	}
	return form, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*ListingDetail, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in first!")
	}
	if err := validateListingFields(input.Title, input.Price); err != nil {
		return nil, err
	}

	point, err := s.geocode(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Location:    strings.TrimSpace(input.Location),
		Country:     strings.TrimSpace(input.Country),
		Category:    input.Category,
		OwnerID:     ownerID,
		Geometry:    point,
	}

	var uploaded *types.Image
	if input.Image != nil {
		img, err := s.images.Upload(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		uploaded = &img
		listing.Image = uploaded
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		if uploaded != nil {
			err = multierr.Append(err, s.images.Delete(ctx, uploaded.Filename))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create listing")
	}

	s.publish(ctx, events.ListingCreated, listing)
	detail := detailFromModel(listing)
	return &detail, nil
}

func (s *service) Update(ctx context.Context, userID, listingID uuid.UUID, input UpdateInput) (*ListingDetail, error) {
	current, err := s.ownedListing(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil || input.Price != nil {
		title, price := current.Title, current.Price
		if input.Title != nil {
			title = *input.Title
		}
		if input.Price != nil {
			price = *input.Price
		}
		if err := validateListingFields(title, price); err != nil {
			return nil, err
		}
	}

	var relocated *types.PointGeometry
	if location, ok := submitted(input.Location); ok && location != current.Location {
		point, err := s.geocode(ctx, location)
		if err != nil {
			return nil, err
		}
		relocated = &point
	}

	var uploaded *types.Image
	if input.Image != nil {
		img, err := s.images.Upload(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		uploaded = &img
	}

	var (
		updated  *models.Listing
		oldImage *types.Image
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listing, err := repo.FindForUpdate(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, MsgNotOwner)
		}

		applyUpdate(listing, input)
		if relocated != nil {
			listing.Geometry = *relocated
		}
		if uploaded != nil {
			oldImage = listing.Image
			listing.Image = uploaded
		}
		if err := repo.Save(ctx, listing); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		if uploaded != nil {
			err = multierr.Append(err, s.images.Delete(ctx, uploaded.Filename))
		}
		return nil, s.mapStoreError(err, "update listing")
	}

	if oldImage != nil && oldImage.Filename != "" {
		if delErr := s.images.Delete(ctx, oldImage.Filename); delErr != nil {
			s.logg.Warn(s.logg.WithField(s.logg.WithListingID(ctx, listingID.String()), "error", delErr.Error()), "listing.update.old_image_cleanup_failed")
		}
	}
	s.invalidate(ctx, listingID)
	s.publish(ctx, events.ListingUpdated, updated)

	detail := detailFromModel(updated)
	return &detail, nil
}

func (s *service) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	listing, err := s.ownedListing(ctx, userID, listingID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCascade(ctx, listingID); err != nil {
		return s.mapStoreError(err, "delete listing")
	}

	s.invalidate(ctx, listingID)
	if listing.Image != nil && listing.Image.Filename != "" {
		if delErr := s.images.Delete(ctx, listing.Image.Filename); delErr != nil {
			s.logg.Warn(s.logg.WithField(s.logg.WithListingID(ctx, listingID.String()), "error", delErr.Error()), "listing.delete.image_cleanup_failed")
		}
	}
	s.publish(ctx, events.ListingDeleted, listing)
	return nil
}

func (s *service) ownedListing(ctx context.Context, userID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, s.mapStoreError(err, "load listing")
	}
	if listing.OwnerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, MsgNotOwner)
	}
	return listing, nil
}

func (s *service) loadDetail(ctx context.Context, listingID uuid.UUID) (*ListingDetail, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, listingID)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listing.cache.get_failed")
		} else if ok {
			return cached, nil
		}
	}

	listing, err := s.repo.FindDetail(ctx, listingID)
	if err != nil {
		return nil, s.mapStoreError(err, "load listing")
	}
	detail := detailFromModel(listing)

	if s.cache != nil {
		if err := s.cache.Set(ctx, &detail); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listing.cache.set_failed")
		}
	}
	return &detail, nil
}

func (s *service) geocode(ctx context.Context, location string) (types.PointGeometry, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		s.recordGeocode("empty")
		return types.PointGeometry{}, pkgerrors.New(pkgerrors.CodeValidation, MsgInvalidLocation)
	}

	features, err := s.geocoder.Geocode(ctx, location, 1)
	if err != nil {
		s.recordGeocode("error")
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return types.PointGeometry{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, MsgInvalidLocation)
		}
		return types.PointGeometry{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocode location")
	}
	if len(features) == 0 {
		s.recordGeocode("empty")
		return types.PointGeometry{}, pkgerrors.New(pkgerrors.CodeValidation, MsgInvalidLocation)
	}

	point := features[0].Geometry
	if err := point.Validate(); err != nil {
		s.recordGeocode("error")
		return types.PointGeometry{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, MsgInvalidLocation)
	}
	s.recordGeocode("hit")
	return point, nil
}

func (s *service) recordGeocode(outcome string) {
	if s.metrics != nil {
		s.metrics.IncGeocode(outcome)
	}
}

func (s *service) likedSet(ctx context.Context, viewerID uuid.UUID, ids []uuid.UUID) map[uuid.UUID]bool {
	if s.likes == nil || viewerID == uuid.Nil || len(ids) == 0 {
		return nil
	}
	liked, err := s.likes.LikedSet(ctx, viewerID, ids)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "listing.liked_set_failed")
		return nil
	}
	return liked
}

func (s *service) invalidate(ctx context.Context, listingID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, listingID); err != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithListingID(ctx, listingID.String()), "error", err.Error()), "listing.cache.invalidate_failed")
	}
}

func (s *service) publish(ctx context.Context, evt events.ListingEvent, listing *models.Listing) {
	if listing == nil {
		return
	}
	err := s.publisher.PublishListing(ctx, events.ListingChanged{
		Event:      evt,
		ListingID:  listing.ID,
		OwnerID:    listing.OwnerID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logCtx := s.logg.WithFields(s.logg.WithListingID(ctx, listing.ID.String()), map[string]any{"event": string(evt), "error": err.Error()})
		s.logg.Warn(logCtx, "listing.event.publish_failed")
	}
}

func (s *service) mapStoreError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, MsgNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func applyUpdate(listing *models.Listing, input UpdateInput) {
	if input.Title != nil {
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if description, ok := submitted(input.Description); ok {
		listing.Description = description
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
	if location, ok := submitted(input.Location); ok {
		listing.Location = location
	}
	if country, ok := submitted(input.Country); ok {
		listing.Country = country
	}
	if input.Category != nil {
		category := *input.Category
		listing.Category = &category
	}
}

// submitted returns the trimmed value of an optional text field. Blank values
// count as not submitted.
func submitted(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}

func validateListingFields(title string, price decimal.Decimal) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Title is required.")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Price cannot be negative.")
	}
	if price.GreaterThan(MaxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgPriceTooHigh)
	}
	return nil
}
