package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/angelmondragon/wanderlust-backend/internal/listings"
	"github.com/angelmondragon/wanderlust-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/storage/s3"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 5000
	maxPlaceLen       = 200
)

// ListingForm is the submitted listing form. Nil fields were absent from the
// request.
type ListingForm struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Location    *string
	Country     *string
	Category    *enums.ListingCategory
	Image       *s3.Upload
}

type createListingPayload struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"required,max=5000"`
	Location    string `json:"location" validate:"required,max=200"`
	Country     string `json:"country" validate:"required,max=200"`
	Category    string `json:"category" validate:"listing_category"`
}

// ParseListingForm reads a urlencoded or multipart listing form. Fields may
// be posted flat ("title") or nested ("listing[title]").
func ParseListingForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (ListingForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return ListingForm{}, formError(err)
		}
	} else if err := r.ParseForm(); err != nil {
		return ListingForm{}, formError(err)
	}

	var form ListingForm
	form.Title = formText(r, "title", maxTitleLen)
	form.Description = formText(r, "description", maxDescriptionLen)
	form.Location = formText(r, "location", maxPlaceLen)
	form.Country = formText(r, "country", maxPlaceLen)

	if raw := formText(r, "price", 0); raw != nil && *raw != "" {
		price, err := decimal.NewFromString(*raw)
		if err != nil {
			return ListingForm{}, pkgerrors.New(pkgerrors.CodeValidation, "Price must be a number.").
				WithDetails(map[string]string{"price": "must be a number"})
		}
		if price.GreaterThan(listings.MaxPrice) {
			return ListingForm{}, pkgerrors.New(pkgerrors.CodeValidation, listings.MsgPriceTooHigh).
				WithDetails(map[string]string{"price": "must be at most " + listings.MaxPrice.StringFixed(2)})
		}
		form.Price = &price
	}

	if raw := formText(r, "category", 0); raw != nil && *raw != "" {
		category, err := enums.ParseListingCategory(*raw)
		if err != nil {
			return ListingForm{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid category. Please try again.").
				WithDetails(map[string]string{"category": "must be a known category"})
		}
		form.Category = &category
	}

	upload, err := formImage(r)
	if err != nil {
		return ListingForm{}, err
	}
	form.Image = upload

	return form, nil
}

// CreateInput requires every mandatory field.
func (f ListingForm) CreateInput() (listings.CreateInput, error) {
	payload := createListingPayload{
		Title:       deref(f.Title),
		Description: deref(f.Description),
		Location:    deref(f.Location),
		Country:     deref(f.Country),
	}
	if f.Category != nil {
		payload.Category = f.Category.String()
	}
	if err := Validate(&payload); err != nil {
		return listings.CreateInput{}, err
	}
	if f.Price == nil {
		return listings.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price is required").
			WithDetails(map[string]string{"price": "is required"})
	}

	return listings.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Price:       *f.Price,
		Location:    payload.Location,
		Country:     payload.Country,
		Category:    f.Category,
		Image:       f.Image,
	}, nil
}

// UpdateInput passes through only the fields that were submitted. Blank text
// fields keep their stored value, except a blank title, which the listing
// service rejects.
func (f ListingForm) UpdateInput() listings.UpdateInput {
	return listings.UpdateInput{
		Title:       f.Title,
		Description: nonBlank(f.Description),
		Price:       f.Price,
		Location:    nonBlank(f.Location),
		Country:     nonBlank(f.Country),
		Category:    f.Category,
		Image:       f.Image,
	}
}

func formText(r *http.Request, field string, maxLen int) *string {
	for _, key := range []string{"listing[" + field + "]", field} {
		values, ok := r.Form[key]
		if !ok || len(values) == 0 {
			continue
		}
		v := SanitizeString(values[0], maxLen)
		return &v
	}
	return nil
}

func formImage(r *http.Request) (*s3.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	for _, key := range []string{"listing[image]", "image"} {
		headers := r.MultipartForm.File[key]
		if len(headers) == 0 {
			continue
		}
		return readUpload(headers[0])
	}
	return nil, nil
}

func readUpload(header *multipart.FileHeader) (*s3.Upload, error) {
	if header.Size == 0 {
		return nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read uploaded image")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read uploaded image")
	}
	return &s3.Upload{OriginalName: header.Filename, Data: data}, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Image is too large.")
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form submission")
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
