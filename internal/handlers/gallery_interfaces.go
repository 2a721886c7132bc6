package handlers

import (
	"io"

	"github.com/amanksolutions/galleryguard/internal/gallery"
	"github.com/amanksolutions/galleryguard/internal/watermark"
)

// ImageCatalogInterface defines methods required from the gallery catalog.
type ImageCatalogInterface interface {
	// List returns the images in a service's gallery folder, newest first.
	//
	// Parameters:
	//   - serviceID: The tenant owning the folder
	//   - folderKind: The asset class within the service
	//
	// Returns:
	//   - The listing entries, each carrying a protected serve URL
	//   - An error if the folder does not exist or cannot be read
	List(serviceID, folderKind string) ([]gallery.Entry, error)

	// ListAll returns the images of every service's folder of the given
	// kind, merged newest first.
	//
	// Parameters:
	//   - folderKind: The asset class to scan across services
	//
	// Returns:
	//   - The merged listing entries
	//   - An error if the kind is invalid or the tree cannot be read
	ListAll(folderKind string) ([]gallery.Entry, error)

	// ServeURL builds the protected serve URL for one image.
	ServeURL(serviceID, folderKind, imageName string) string
}

// ImageResolverInterface defines methods required from the path resolver.
type ImageResolverInterface interface {
	// Resolve maps identifiers to a verified on-disk image.
	//
	// Parameters:
	//   - serviceID: The tenant owning the image
	//   - folderKind: The asset class within the service
	//   - imageName: The file name within the folder
	//
	// Returns:
	//   - The resolved image with its confined absolute path
	//   - An error if a component is invalid, the file is missing, the
	//     resolved path escapes the root, or the content is not an image
	Resolve(serviceID, folderKind, imageName string) (*gallery.Image, error)
}

// ImageStorageInterface defines methods required from gallery storage.
type ImageStorageInterface interface {
	// Save writes an uploaded image into a service's gallery folder.
	//
	// Parameters:
	//   - serviceID: The tenant receiving the image
	//   - folderKind: The asset class to store under
	//   - imageName: The sanitized file name to store as
	//   - content: The image bytes
	//
	// Returns:
	//   - The stored image
	//   - An error if validation or the write fails
	Save(serviceID, folderKind, imageName string, content io.Reader) (*gallery.Image, error)

	// Delete removes an image from a service's gallery folder.
	//
	// Parameters:
	//   - serviceID: The tenant owning the image
	//   - folderKind: The asset class within the service
	//   - imageName: The file name to remove
	//
	// Returns:
	//   - An error if the image does not exist or removal fails
	Delete(serviceID, folderKind, imageName string) error
}

// WatermarkerInterface defines methods required from the watermark engine.
type WatermarkerInterface interface {
	// Apply decodes an image, composites the watermark, and re-encodes it.
	//
	// Parameters:
	//   - r: The source image bytes
	//   - variant: How prominently to apply the mark
	//
	// Returns:
	//   - The watermarked bytes and the image format name
	//   - An error if decoding or re-encoding fails
	Apply(r io.Reader, variant watermark.Variant) ([]byte, string, error)
}
