// Package gallery confines all filesystem access to the protected image
// tree. Every path served or managed by the API is built here, from
// validated components only, and verified to stay inside the tree after
// symlink resolution. Nothing outside this package touches image paths.
package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// Image is a resolved, verified image file inside the protected tree.
type Image struct {
	Path       string // absolute filesystem path
	ServiceID  string
	FolderKind string
	Name       string
	MIMEType   string
	Size       int64
}

// Resolver builds and verifies paths under a single gallery root.
type Resolver struct {
	root string // canonical absolute root
}

// NewResolver canonicalizes the root directory and returns a resolver bound
// to it. The root must exist.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving gallery root: %w", err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("gallery root %s: %w", root, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("gallery root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("gallery root %s is not a directory", root)
	}

	return &Resolver{root: canonical}, nil
}

// Root returns the canonical gallery root.
func (r *Resolver) Root() string {
	return r.root
}

// ValidFolderKind reports whether the folder kind is one of the two
// sanctioned gallery subdirectories.
func ValidFolderKind(kind string) bool {
	return kind == constants.FolderKindGallery || kind == constants.FolderKindGalleryHalf
}

// checkComponents validates the three client-supplied path components.
// Each must be non-empty and survive sanitization unchanged; anything else
// is rejected outright rather than corrected.
func checkComponents(serviceID, folderKind, imageName string) error {
	if !utils.IsSafeIdentifier(serviceID) {
		return utils.NewValidationError(constants.QueryParamServiceID, constants.MsgInvalidServiceID)
	}
	if !ValidFolderKind(folderKind) {
		return utils.NewValidationError(constants.QueryParamFolderType, constants.MsgInvalidFolderKind)
	}
	if !utils.IsSafeIdentifier(imageName) {
		return utils.NewValidationError(constants.QueryParamImageName, constants.MsgInvalidImageName)
	}
	return nil
}

// Resolve builds the path root/serviceID/folderKind/imageName, verifies the
// result stays inside the root after symlink resolution, and confirms it is
// a regular file whose content sniffs as an image. A path that escapes the
// root is reported exactly like a missing file; only the log tells them
// apart.
func (r *Resolver) Resolve(serviceID, folderKind, imageName string) (*Image, error) {
	if err := checkComponents(serviceID, folderKind, imageName); err != nil {
		return nil, err
	}

	candidate := filepath.Join(r.root, serviceID, folderKind, imageName)

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, utils.NewNotFoundError(constants.MsgImageNotFound)
		}
		return nil, utils.NewInternalServerError(err)
	}

	if !r.contains(resolved) {
		log.Warn().
			Str("event", constants.LogEventPathEscape).
			Str("candidate", candidate).
			Str("resolved", resolved).
			Msg("Rejected path escaping the gallery root")
		return nil, utils.NewPathEscapeError(candidate, constants.MsgImageNotFound)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, utils.NewNotFoundError(constants.MsgImageNotFound)
	}
	if !info.Mode().IsRegular() {
		return nil, utils.NewNotFoundError(constants.MsgImageNotFound)
	}

	mtype, err := mimetype.DetectFile(resolved)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, utils.NewValidationError(constants.QueryParamImageName, constants.MsgNotAnImage)
	}

	return &Image{
		Path:       resolved,
		ServiceID:  serviceID,
		FolderKind: folderKind,
		Name:       imageName,
		MIMEType:   mtype.String(),
		Size:       info.Size(),
	}, nil
}

// ResolveFolder validates the service and folder components and returns the
// folder path if it exists inside the root.
func (r *Resolver) ResolveFolder(serviceID, folderKind string) (string, error) {
	if !utils.IsSafeIdentifier(serviceID) {
		return "", utils.NewValidationError(constants.QueryParamServiceID, constants.MsgInvalidServiceID)
	}
	if !ValidFolderKind(folderKind) {
		return "", utils.NewValidationError(constants.QueryParamFolderType, constants.MsgInvalidFolderKind)
	}

	candidate := filepath.Join(r.root, serviceID, folderKind)

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			return "", utils.NewNotFoundError(constants.MsgGalleryNotFound)
		}
		return "", utils.NewInternalServerError(err)
	}

	if !r.contains(resolved) {
		log.Warn().
			Str("event", constants.LogEventPathEscape).
			Str("candidate", candidate).
			Msg("Rejected folder escaping the gallery root")
		return "", utils.NewPathEscapeError(candidate, constants.MsgGalleryNotFound)
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", utils.NewNotFoundError(constants.MsgGalleryNotFound)
	}

	return resolved, nil
}

// contains reports whether the already-canonical path sits under the root.
func (r *Resolver) contains(resolved string) bool {
	rel, err := filepath.Rel(r.root, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
