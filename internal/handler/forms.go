package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/model"
)

// GenreChoices are the genres offered on the venue and artist forms.
// Stored records may carry other values; those are kept and shown too.
var GenreChoices = []string{
	"Alternative", "Blues", "Classical", "Country", "Electronic", "Folk",
	"Funk", "Hip-Hop", "Heavy Metal", "Instrumental", "Jazz",
	"Musical Theatre", "Pop", "Punk", "R&B", "Reggae", "Rock n Roll",
	"Soul", "Other",
}

// startTimeLayouts are the accepted renderings of a show start time.
// Layouts without a zone are read as UTC.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// GenreOption is one checkbox of the genre picker.
type GenreOption struct {
	Name     string
	Selected bool
}

// VenueForm is the submitted venue form.
type VenueForm struct {
	Name               string   `json:"name"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	Address            string   `json:"address"`
	Phone              string   `json:"phone"`
	ImageLink          string   `json:"image_link"`
	FacebookLink       string   `json:"facebook_link"`
	Website            string   `json:"website"`
	Genres             []string `json:"genres"`
	SeekingTalent      bool     `json:"seeking_talent"`
	SeekingDescription string   `json:"seeking_description"`
}

// ArtistForm is the submitted artist form.
type ArtistForm struct {
	Name               string   `json:"name"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	Phone              string   `json:"phone"`
	ImageLink          string   `json:"image_link"`
	FacebookLink       string   `json:"facebook_link"`
	Website            string   `json:"website"`
	Genres             []string `json:"genres"`
	SeekingVenue       bool     `json:"seeking_venue"`
	SeekingDescription string   `json:"seeking_description"`
}

// ShowForm is the submitted show form. Values stay as text so a rejected
// submission can be echoed back unchanged.
type ShowForm struct {
	ArtistID  string `json:"artist_id"`
	VenueID   string `json:"venue_id"`
	StartTime string `json:"start_time"`
}

func formValues(c echo.Context) (url.Values, error) {
	params, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(400, "malformed form body")
	}
	return params, nil
}

func field(params url.Values, key string) string {
	return strings.TrimSpace(params.Get(key))
}

// checked reports whether a checkbox was submitted. Browsers omit
// unchecked boxes, so presence alone means true whatever the value.
func checked(params url.Values, key string) bool {
	return len(params[key]) > 0
}

// website reads the website field, accepting the older website_link name.
func website(params url.Values) string {
	if _, ok := params["website"]; ok {
		return field(params, "website")
	}
	return field(params, "website_link")
}

func parseVenueForm(c echo.Context) (VenueForm, error) {
	p, err := formValues(c)
	if err != nil {
		return VenueForm{}, err
	}
	return VenueForm{
		Name:               field(p, "name"),
		City:               field(p, "city"),
		State:              field(p, "state"),
		Address:            field(p, "address"),
		Phone:              field(p, "phone"),
		ImageLink:          field(p, "image_link"),
		FacebookLink:       field(p, "facebook_link"),
		Website:            website(p),
		Genres:             model.NormalizeGenres(p["genres"]),
		SeekingTalent:      checked(p, "seeking_talent"),
		SeekingDescription: field(p, "seeking_description"),
	}, nil
}

func parseArtistForm(c echo.Context) (ArtistForm, error) {
	p, err := formValues(c)
	if err != nil {
		return ArtistForm{}, err
	}
	return ArtistForm{
		Name:               field(p, "name"),
		City:               field(p, "city"),
		State:              field(p, "state"),
		Phone:              field(p, "phone"),
		ImageLink:          field(p, "image_link"),
		FacebookLink:       field(p, "facebook_link"),
		Website:            website(p),
		Genres:             model.NormalizeGenres(p["genres"]),
		SeekingVenue:       checked(p, "seeking_venue"),
		SeekingDescription: field(p, "seeking_description"),
	}, nil
}

func parseShowForm(c echo.Context) (ShowForm, error) {
	p, err := formValues(c)
	if err != nil {
		return ShowForm{}, err
	}
	return ShowForm{
		ArtistID:  field(p, "artist_id"),
		VenueID:   field(p, "venue_id"),
		StartTime: field(p, "start_time"),
	}, nil
}

var genreRule = validation.Each(validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.Contains(s, model.GenreSeparator) {
		return errors.New("genres must not contain commas")
	}
	return nil
}))

// maxGenresLen is the width of the genres column.
const maxGenresLen = 500

func joinedGenresFit(value interface{}) error {
	tags, _ := value.([]string)
	if n := len(model.JoinGenres(tags)); n > maxGenresLen {
		return fmt.Errorf("too many genres: %d of %d characters", n, maxGenresLen)
	}
	return nil
}

// Validate checks required fields, lengths and link syntax.
func (f VenueForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.City, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.State, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.Address, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.Phone, validation.Length(0, 120)),
		validation.Field(&f.ImageLink, validation.Length(0, 500), is.RequestURL),
		validation.Field(&f.FacebookLink, validation.Length(0, 120), is.RequestURL),
		validation.Field(&f.Website, validation.Length(0, 120), is.RequestURL),
		validation.Field(&f.Genres, genreRule, validation.By(joinedGenresFit)),
		validation.Field(&f.SeekingDescription, validation.Length(0, 500)),
	)
}

// Validate checks required fields, lengths and link syntax.
func (f ArtistForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.City, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.State, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.Phone, validation.Length(0, 120)),
		validation.Field(&f.ImageLink, validation.Length(0, 500), is.RequestURL),
		validation.Field(&f.FacebookLink, validation.Length(0, 120), is.RequestURL),
		validation.Field(&f.Website, validation.Length(0, 120), is.RequestURL),
		validation.Field(&f.Genres, genreRule, validation.By(joinedGenresFit)),
		validation.Field(&f.SeekingDescription, validation.Length(0, 500)),
	)
}

// Validate checks both references are ids and the start time parses.
func (f ShowForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ArtistID, validation.Required, is.Digit),
		validation.Field(&f.VenueID, validation.Required, is.Digit),
		validation.Field(&f.StartTime, validation.Required, validation.By(func(value interface{}) error {
			s, _ := value.(string)
			_, err := parseStartTime(s)
			return err
		})),
	)
}

func parseStartTime(s string) (time.Time, error) {
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("use YYYY-MM-DD HH:MM:SS")
}

// Show converts a validated form into a show.
func (f ShowForm) Show() (model.Show, error) {
	artistID, err := strconv.ParseUint(f.ArtistID, 10, 64)
	if err != nil {
		return model.Show{}, fmt.Errorf("artist_id: %w", err)
	}
	venueID, err := strconv.ParseUint(f.VenueID, 10, 64)
	if err != nil {
		return model.Show{}, fmt.Errorf("venue_id: %w", err)
	}
	start, err := parseStartTime(f.StartTime)
	if err != nil {
		return model.Show{}, err
	}
	return model.Show{ArtistID: artistID, VenueID: venueID, StartTime: start}, nil
}

// Apply overwrites every editable field of v with the form values.
func (f VenueForm) Apply(v *model.Venue) {
	v.Name = f.Name
	v.City = f.City
	v.State = f.State
	v.Address = f.Address
	v.Phone = f.Phone
	v.ImageLink = f.ImageLink
	v.FacebookLink = f.FacebookLink
	v.Website = f.Website
	v.Genres = append([]string{}, f.Genres...)
	v.SeekingTalent = f.SeekingTalent
	v.SeekingDescription = f.SeekingDescription
}

// Apply overwrites every editable field of a with the form values.
func (f ArtistForm) Apply(a *model.Artist) {
	a.Name = f.Name
	a.City = f.City
	a.State = f.State
	a.Phone = f.Phone
	a.ImageLink = f.ImageLink
	a.FacebookLink = f.FacebookLink
	a.Website = f.Website
	a.Genres = append([]string{}, f.Genres...)
	a.SeekingVenue = f.SeekingVenue
	a.SeekingDescription = f.SeekingDescription
}

func venueFormOf(v *model.Venue) VenueForm {
	return VenueForm{
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		Address:            v.Address,
		Phone:              v.Phone,
		ImageLink:          v.ImageLink,
		FacebookLink:       v.FacebookLink,
		Website:            v.Website,
		Genres:             v.Genres,
		SeekingTalent:      v.SeekingTalent,
		SeekingDescription: v.SeekingDescription,
	}
}

func artistFormOf(a *model.Artist) ArtistForm {
	return ArtistForm{
		Name:               a.Name,
		City:               a.City,
		State:              a.State,
		Phone:              a.Phone,
		ImageLink:          a.ImageLink,
		FacebookLink:       a.FacebookLink,
		Website:            a.Website,
		Genres:             a.Genres,
		SeekingVenue:       a.SeekingVenue,
		SeekingDescription: a.SeekingDescription,
	}
}

// genreOptions lists the offered genres followed by any selected value
// that is not among them, marking the selected ones.
func genreOptions(selected []string) []GenreOption {
	picked := make(map[string]bool, len(selected))
	for _, g := range selected {
		picked[g] = true
	}
	opts := make([]GenreOption, 0, len(GenreChoices)+len(selected))
	for _, g := range GenreChoices {
		opts = append(opts, GenreOption{Name: g, Selected: picked[g]})
		delete(picked, g)
	}
	for _, g := range selected {
		if picked[g] {
			opts = append(opts, GenreOption{Name: g, Selected: true})
			delete(picked, g)
		}
	}
	return opts
}

// fieldErrors flattens ozzo validation errors into field -> message.
// A non-validation error is returned unchanged.
func fieldErrors(err error) (map[string]string, error) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make(map[string]string, len(verrs))
	for k, v := range verrs {
		if v != nil {
			out[k] = v.Error()
		}
	}
	return out, nil
}
