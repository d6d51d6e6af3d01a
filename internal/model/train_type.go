package model

// TrainType groups trains of the same kind (intercity, regional, ...).
// Image is a path relative to the media directory and is nil until an
// image has been uploaded.
type TrainType struct {
	ID    uint64  `json:"id"`    // train_types.id
	Name  string  `json:"name"`  // train_types.name (unique)
	Image *string `json:"image"` // train_types.image (nullable)
}
