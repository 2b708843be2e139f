package models

type Place string

const (
	PlaceHeader Place = "header"
	PlaceColumn Place = "column"
)

func (p Place) Valid() bool { return p == PlaceHeader || p == PlaceColumn }

// Screen is the app screen a banner opens when tapped.
type Screen int

const (
	ScreenNone    Screen = 0
	ScreenHome    Screen = 1
	ScreenAd      Screen = 2
	ScreenService Screen = 3
)

type Banner struct {
	ID         string `json:"id"`
	Place      Place  `json:"place"`
	ImageURL   string `json:"image_url"`
	IsDefault  bool   `json:"is_default"`
	IsShown    bool   `json:"is_shown"`
	Screen     Screen `json:"screen,omitempty"`
	ExternalID *int64 `json:"external_id,omitempty"`
	Ordering   int    `json:"ordering"`
}

// BannerOrder is a paid placement of a banner. Left counts the impressions
// still owed to the buyer.
type BannerOrder struct {
	ID        string `json:"id"`
	BannerID  string `json:"banner_id"`
	UserID    string `json:"user_id"`
	ShowRatio int    `json:"show_ratio"`
	Checked   bool   `json:"checked"`
	Left      int    `json:"left"`
	IsShown   bool   `json:"is_shown"`
}

// Candidate is one entry offered to the weighted selector. OrderID is empty
// for default banners.
type Candidate struct {
	ID        string
	OrderID   string
	BannerID  string
	Weight    int
	IsDefault bool
}

func (o BannerOrder) Candidate() Candidate {
	return Candidate{ID: o.ID, OrderID: o.ID, BannerID: o.BannerID, Weight: o.ShowRatio}
}

func (b Banner) Candidate() Candidate {
	return Candidate{ID: b.ID, BannerID: b.ID, Weight: 1, IsDefault: true}
}
