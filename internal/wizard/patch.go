package wizard

import "github.com/iudanet/winelog/internal/models"

// Field names a draft field tracked by the field clock.
type Field string

const (
	FieldFrontImage       Field = "wine.front_image"
	FieldBackImage        Field = "wine.back_image"
	FieldName             Field = "wine.name"
	FieldOrigin           Field = "wine.origin"
	FieldGrape            Field = "wine.grape"
	FieldYear             Field = "wine.year"
	FieldAlcohol          Field = "wine.alcohol"
	FieldType             Field = "wine.type"
	FieldDescription      Field = "wine.description"
	FieldAromaNote        Field = "wine.aroma_note"
	FieldTasteNote        Field = "wine.taste_note"
	FieldFinishNote       Field = "wine.finish_note"
	FieldSweetness        Field = "wine.sweetness"
	FieldAcidity          Field = "wine.acidity"
	FieldTannin           Field = "wine.tannin"
	FieldBody             Field = "wine.body"
	FieldThumbnailImage   Field = "thumbnail_image"
	FieldDownloadImage    Field = "download_image"
	FieldRating           Field = "rating"
	FieldReview           Field = "review"
	FieldPrice            Field = "price"
	FieldPurchaseLocation Field = "purchase_location"
	FieldDrinkDate        Field = "drink_date"
	FieldIsPublic         Field = "is_public"
	FieldAIAssisted       Field = "ai_assisted"
)

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// WinePatch is a partial update of the wine data. Nil fields are left untouched.
type WinePatch struct {
	FrontImage  *models.Media
	BackImage   *models.Media
	Name        *string
	Origin      *string
	Grape       *string
	Year        *string
	Alcohol     *string
	Type        *models.WineType
	Description *string
	AromaNote   *string
	TasteNote   *string
	FinishNote  *string
	Sweetness   *int
	Acidity     *int
	Tannin      *int
	Body        *int
}

// DiaryPatch is a partial update of the diary fields. Nil fields are left untouched.
// AIAssisted is the provenance-bearing field: setting it ends a running analysis.
type DiaryPatch struct {
	ThumbnailImage   *models.Media
	DownloadImage    *models.Media
	Rating           *int
	Review           *string
	Price            *string
	PurchaseLocation *string
	DrinkDate        *string
	IsPublic         *bool
	AIAssisted       *bool
}

func setString(c *fieldClock, f Field, dst *string, v *string) {
	if v == nil {
		return
	}
	*dst = *v
	c.tick(f)
}

func setScale(c *fieldClock, f Field, dst *int, v *int) {
	if v == nil {
		return
	}
	*dst = models.ClampScale(*v)
	c.tick(f)
}

func setMedia(c *fieldClock, f Field, dst *models.Media, v *models.Media) {
	if v == nil {
		return
	}
	*dst = v.Clone()
	c.tick(f)
}

func (p WinePatch) apply(c *fieldClock, w *models.WineData) {
	setMedia(c, FieldFrontImage, &w.FrontImage, p.FrontImage)
	setMedia(c, FieldBackImage, &w.BackImage, p.BackImage)
	setString(c, FieldName, &w.Name, p.Name)
	setString(c, FieldOrigin, &w.Origin, p.Origin)
	setString(c, FieldGrape, &w.Grape, p.Grape)
	setString(c, FieldYear, &w.Year, p.Year)
	setString(c, FieldAlcohol, &w.Alcohol, p.Alcohol)
	if p.Type != nil {
		w.Type = *p.Type
		c.tick(FieldType)
	}
	setString(c, FieldDescription, &w.Description, p.Description)
	setString(c, FieldAromaNote, &w.AromaNote, p.AromaNote)
	setString(c, FieldTasteNote, &w.TasteNote, p.TasteNote)
	setString(c, FieldFinishNote, &w.FinishNote, p.FinishNote)
	setScale(c, FieldSweetness, &w.Sweetness, p.Sweetness)
	setScale(c, FieldAcidity, &w.Acidity, p.Acidity)
	setScale(c, FieldTannin, &w.Tannin, p.Tannin)
	setScale(c, FieldBody, &w.Body, p.Body)
}

func (p DiaryPatch) apply(c *fieldClock, d *models.DiaryDraft) {
	setMedia(c, FieldThumbnailImage, &d.ThumbnailImage, p.ThumbnailImage)
	setMedia(c, FieldDownloadImage, &d.DownloadImage, p.DownloadImage)
	if p.Rating != nil {
		d.Rating = models.ClampRating(*p.Rating)
		c.tick(FieldRating)
	}
	setString(c, FieldReview, &d.Review, p.Review)
	setString(c, FieldPrice, &d.Price, p.Price)
	setString(c, FieldPurchaseLocation, &d.PurchaseLocation, p.PurchaseLocation)
	setString(c, FieldDrinkDate, &d.DrinkDate, p.DrinkDate)
	if p.IsPublic != nil {
		d.IsPublic = *p.IsPublic
		c.tick(FieldIsPublic)
	}
	if p.AIAssisted != nil {
		d.AIAssisted = *p.AIAssisted
		c.tick(FieldAIAssisted)
	}
}
