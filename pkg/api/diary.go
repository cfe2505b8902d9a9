package api

// WineAnalysis is the identity extracted from the two label photos
type WineAnalysis struct {
	Name        string `json:"name"`        // wine name
	Origin      string `json:"origin"`      // country or region
	Grape       string `json:"grape"`       // grape variety
	Year        string `json:"year"`        // vintage
	Alcohol     string `json:"alcohol"`     // ABV, may carry a trailing %
	Type        string `json:"type"`        // wine style as returned by the model
	Description string `json:"description"` // short description
}

// AnalysisResult wraps the LLM output of the label analysis
type AnalysisResult struct {
	Analysis struct {
		WineAnalysis *WineAnalysis `json:"wine_analysis"`
	} `json:"analysis"`
	Success bool `json:"success"`
}

// WineAnalysisResponse is the body of POST /api/v1/diary/wine-analysis
type WineAnalysisResponse struct {
	AnalysisResult *AnalysisResult `json:"analysis_result"`
	Message        string          `json:"message"`
	ImagesReceived int             `json:"images_received"`
}

// WineTasteRequest is the body of POST /api/v1/diary/wine-taste
type WineTasteRequest struct {
	Name   string `json:"name"`
	Origin string `json:"origin,omitempty"`
	Grape  string `json:"grape,omitempty"`
	Year   string `json:"year,omitempty"`
	Type   string `json:"type,omitempty"`
}

// TastingNote is the tasting profile returned for a wine
type TastingNote struct {
	Aroma     string `json:"aroma"`
	Taste     string `json:"taste"`
	Finish    string `json:"finish"`
	Sweetness int    `json:"sweetness"` // 1-5
	Acidity   int    `json:"acidity"`   // 1-5
	Tannin    int    `json:"tannin"`    // 1-5
	Body      int    `json:"body"`      // 1-5
}

// WineTasteResponse is the body returned by POST /api/v1/diary/wine-taste
type WineTasteResponse struct {
	TasteResult *struct {
		TastingNote *TastingNote `json:"tastingNote"`
	} `json:"taste_result"`
	Message string `json:"message"`
}

// SaveWineData is the wine_data form field of POST /api/v1/diary/save
type SaveWineData struct {
	Name       string `json:"name"`
	Origin     string `json:"origin"`
	Grape      string `json:"grape"`
	Year       string `json:"year"`
	Alcohol    string `json:"alcohol"`
	Type       string `json:"type"`
	AromaNote  string `json:"aromaNote"`
	TasteNote  string `json:"tasteNote"`
	FinishNote string `json:"finishNote"`
	Sweetness  int    `json:"sweetness"`
	Acidity    int    `json:"acidity"`
	Tannin     int    `json:"tannin"`
	Body       int    `json:"body"`
}

// SaveDiaryData is the diary_data form field of POST /api/v1/diary/save
type SaveDiaryData struct {
	DrinkDate        string `json:"drinkDate,omitempty"`
	Review           string `json:"review"`
	Price            string `json:"price"`
	PurchaseLocation string `json:"purchaseLocation"`
	CreatedAt        string `json:"createdAt"`
	Rating           int    `json:"rating,omitempty"`
	IsPublic         bool   `json:"isPublic"`
}

// SaveDiaryResponse is the body returned by POST /api/v1/diary/save
type SaveDiaryResponse struct {
	UploadedImages map[string]string `json:"uploaded_images,omitempty"`
	Message        string            `json:"message"`
	DiaryID        int64             `json:"diary_id"`
	WineID         int64             `json:"wine_id"`
	Success        bool              `json:"success"`
}
