package gallery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// Storage writes and removes gallery images. All writes are staged to a
// temporary file and renamed into place, so a failed upload never leaves a
// partial image visible to the catalog.
type Storage struct {
	resolver *Resolver
}

// NewStorage creates a storage layer over the given resolver.
func NewStorage(resolver *Resolver) *Storage {
	return &Storage{resolver: resolver}
}

// Save stores an uploaded image as root/serviceID/folderKind/imageName,
// creating the folder as needed. The content is sniffed before the file
// becomes visible; non-image content is rejected.
func (s *Storage) Save(serviceID, folderKind, imageName string, content io.Reader) (*Image, error) {
	if err := checkComponents(serviceID, folderKind, imageName); err != nil {
		return nil, err
	}

	folder := filepath.Join(s.resolver.Root(), serviceID, folderKind)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, utils.NewInternalServerError(fmt.Errorf("creating gallery folder: %w", err))
	}

	tmp, err := os.CreateTemp(folder, ".upload-*")
	if err != nil {
		return nil, utils.NewInternalServerError(fmt.Errorf("staging upload: %w", err))
	}
	tmpPath := tmp.Name()
	defer func() {
		// Best effort; gone already if the rename happened.
		_ = os.Remove(tmpPath)
	}()

	size, err := io.Copy(tmp, content)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, utils.NewInternalServerError(fmt.Errorf("writing upload: %w", err))
	}

	mtype, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, utils.NewValidationError(constants.FormFieldImage, constants.MsgNotAnImage)
	}

	target := filepath.Join(folder, imageName)
	if err := os.Rename(tmpPath, target); err != nil {
		return nil, utils.NewInternalServerError(fmt.Errorf("placing upload: %w", err))
	}

	log.Info().
		Str("service_id", serviceID).
		Str("folder_kind", folderKind).
		Str("image", imageName).
		Int64("size", size).
		Msg("Gallery image stored")

	return &Image{
		Path:       target,
		ServiceID:  serviceID,
		FolderKind: folderKind,
		Name:       imageName,
		MIMEType:   mtype.String(),
		Size:       size,
	}, nil
}

// Delete removes an image from the tree. The image must resolve first, so
// traversal attempts and foreign files are rejected the same way as on the
// serve path.
func (s *Storage) Delete(serviceID, folderKind, imageName string) error {
	img, err := s.resolver.Resolve(serviceID, folderKind, imageName)
	if err != nil {
		return err
	}

	if err := os.Remove(img.Path); err != nil {
		return utils.NewInternalServerError(fmt.Errorf("deleting image: %w", err))
	}

	log.Info().
		Str("service_id", serviceID).
		Str("folder_kind", folderKind).
		Str("image", imageName).
		Msg("Gallery image deleted")
	return nil
}
