package attractions

// Attraction is a persisted attraction record.
type Attraction struct {
	ID              string `json:"_id" bson:"_id"`
	Name            string `json:"name" bson:"name"`
	Location        string `json:"location" bson:"location"`
	AttractionImage string `json:"attractionImage,omitempty" bson:"attractionImage,omitempty"`
}

// Updatable attraction fields. Anything else named in an UpdateOperation is rejected.
const (
	FieldName            = "name"
	FieldLocation        = "location"
	FieldAttractionImage = "attractionImage"
)

// UpdateOperation is a single {propName, value} pair of a partial update.
type UpdateOperation struct {
	PropName string      `json:"propName"`
	Value    interface{} `json:"value"`
}

// AttractionPatch is the validated form of a list of update operations.
// A nil field is left untouched.
type AttractionPatch struct {
	Name            *string
	Location        *string
	AttractionImage *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AttractionPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.AttractionImage == nil
}

// Fields returns the patch as a field name to value map, using the stored field names.
func (p AttractionPatch) Fields() map[string]string {
	fields := make(map[string]string, 3)
	if p.Name != nil {
		fields[FieldName] = *p.Name
	}
	if p.Location != nil {
		fields[FieldLocation] = *p.Location
	}
	if p.AttractionImage != nil {
		fields[FieldAttractionImage] = *p.AttractionImage
	}
	return fields
}

// Apply writes the patch onto a.
func (p AttractionPatch) Apply(a *Attraction) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.AttractionImage != nil {
		a.AttractionImage = *p.AttractionImage
	}
}

// CreateAttractionRequest carries the fields of a new attraction.
// Image is the generated blob name of an already stored image, if any.
type CreateAttractionRequest struct {
	Name     string
	Location string
	Image    string
}

// ObjectMeta describes a stored blob.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
}

// UploadParams are the parameters of a blob upload.
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
