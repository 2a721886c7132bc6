package gallery

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// imageExtensions is the allow-list applied when scanning a gallery folder.
// Listing filters by extension only; content sniffing happens at serve time.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

// Entry is one image in a gallery listing. Modified is Unix seconds so
// clients can sort and render it without parsing timestamps.
type Entry struct {
	Name      string `json:"name"`
	ServiceID string `json:"service_id"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	Modified  int64  `json:"modified"`
}

// Catalog lists gallery folders and mints serve URLs for their images.
type Catalog struct {
	resolver *Resolver
	baseURL  string // prefix for minted URLs, may be empty for relative URLs
}

// NewCatalog creates a catalog over the given resolver. baseURL, when set,
// prefixes every minted image URL.
func NewCatalog(resolver *Resolver, baseURL string) *Catalog {
	return &Catalog{
		resolver: resolver,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// List returns the images in a service's gallery folder, newest first.
// Subdirectories and files with foreign extensions are skipped.
func (c *Catalog) List(serviceID, folderKind string) ([]Entry, error) {
	folder, err := c.resolver.ResolveFolder(serviceID, folderKind)
	if err != nil {
		return nil, err
	}

	entries, err := c.scanFolder(serviceID, folderKind, folder)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(entries)
	return entries, nil
}

// ListAll returns the images of every service's folder of the given kind,
// merged newest first. Services without that folder are skipped; an empty
// tree yields an empty listing, not an error.
func (c *Catalog) ListAll(folderKind string) ([]Entry, error) {
	if !ValidFolderKind(folderKind) {
		return nil, utils.NewValidationError(constants.QueryParamFolderType, constants.MsgInvalidFolderKind)
	}

	services, err := os.ReadDir(c.resolver.Root())
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(services))
	for _, svc := range services {
		if !svc.IsDir() || !utils.IsSafeIdentifier(svc.Name()) {
			continue
		}

		folder, err := c.resolver.ResolveFolder(svc.Name(), folderKind)
		if err != nil {
			continue
		}

		svcEntries, err := c.scanFolder(svc.Name(), folderKind, folder)
		if err != nil {
			log.Warn().Err(err).Str("service_id", svc.Name()).Msg("Skipping unreadable gallery folder")
			continue
		}
		entries = append(entries, svcEntries...)
	}

	sortNewestFirst(entries)
	return entries, nil
}

// scanFolder reads one gallery folder into listing entries, unsorted.
func (c *Catalog) scanFolder(serviceID, folderKind, folder string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(de.Name()))] {
			continue
		}

		info, err := de.Info()
		if err != nil {
			log.Warn().Err(err).Str("file", de.Name()).Msg("Skipping unreadable gallery entry")
			continue
		}

		entries = append(entries, Entry{
			Name:      de.Name(),
			ServiceID: serviceID,
			URL:       c.ServeURL(serviceID, folderKind, de.Name()),
			Size:      info.Size(),
			Modified:  info.ModTime().Unix(),
		})
	}

	return entries, nil
}

func sortNewestFirst(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Modified > entries[j].Modified
	})
}

// ServeURL builds the protected serve URL for one image.
func (c *Catalog) ServeURL(serviceID, folderKind, imageName string) string {
	query := url.Values{}
	query.Set(constants.QueryParamServiceID, serviceID)
	query.Set(constants.QueryParamFolderType, folderKind)
	query.Set(constants.QueryParamImageName, imageName)
	return c.baseURL + constants.ServeImagePath + "?" + query.Encode()
}
