package drom

import "time"

// One stub type per page kind. Extractors fill whatever the markup
// carries and leave the rest at zero values; zero means "not present".

type BrandStub struct {
	Slug string
	Name string
	URL  string
	// advisory, refreshed from the listing page on every walk
	ReviewCount int64
}

type ModelStub struct {
	Slug string
	Name string
	URL  string

	// technical attributes, usually only present on detail pages
	BodyType       string
	Transmission   string
	DriveType      string
	FuelType       string
	EngineVolumeCC int64
	EnginePowerHP  int64
}

// ReviewRef is a single entry of a model's review listing. The external
// id is the site-assigned numeric id at the end of the review URL.
type ReviewRef struct {
	ExternalID string
	URL        string
	Title      string
}

type CommentStub struct {
	AuthorName   string
	Body         string
	PublishedAt  time.Time
	LikeCount    int64
	DislikeCount int64
}

type Characteristic struct {
	Name  string
	Value string
}

type ReviewDetail struct {
	ExternalID string
	URL        string

	Title     string
	Body      string
	Pros      string
	Cons      string
	Breakages string

	AuthorName string
	AuthorCity string

	OverallRating float64
	OwnerRating   float64

	RatingExterior int64
	RatingInterior int64
	RatingEngine   int64
	RatingHandling int64

	AcquisitionYear int64
	MileageKM       int64
	ExteriorColor   string
	InteriorColor   string

	ViewCount    int64
	LikeCount    int64
	DislikeCount int64

	PublishedAt time.Time

	FuelCityL100KM    float64
	FuelHighwayL100KM float64
	FuelMixedL100KM   float64

	// attributes of the reviewed car, merged into the model record
	Model ModelStub

	Comments        []CommentStub
	Characteristics []Characteristic
}
