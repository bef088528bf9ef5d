package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is an entry in the agency document library. The file itself lives
// on disk under the upload directory; this record holds its metadata.
type Document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"` // e.g. "forms", "marketing", "training"
	FileName    string             `bson:"file_name" json:"file_name"`
	FilePath    string             `bson:"file_path" json:"-"`
	ContentType string             `bson:"content_type" json:"content_type"`
	SizeBytes   int64              `bson:"size_bytes" json:"size_bytes"`
	UploadedBy  primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
