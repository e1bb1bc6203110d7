package service

import (
	"github.com/google/uuid"
)

// QRCodeService renders share QR codes.
type QRCodeService interface {
	// GeneratePostQR returns a PNG QR code linking to the post.
	GeneratePostQR(postID uuid.UUID) ([]byte, error)
}
