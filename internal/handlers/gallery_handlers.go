package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/gallery"
	"github.com/amanksolutions/galleryguard/internal/utils"
	"github.com/amanksolutions/galleryguard/internal/watermark"
)

// GalleryHandler handles gallery listing, delivery, and management routes.
type GalleryHandler struct {
	catalog  ImageCatalogInterface
	resolver ImageResolverInterface
	storage  ImageStorageInterface
	marker   WatermarkerInterface
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(catalog ImageCatalogInterface, resolver ImageResolverInterface, storage ImageStorageInterface, marker WatermarkerInterface) *GalleryHandler {
	return &GalleryHandler{
		catalog:  catalog,
		resolver: resolver,
		storage:  storage,
		marker:   marker,
	}
}

// galleryParams pulls the shared identifier parameters from a request.
// folder_type defaults to the full-size gallery when absent.
func galleryParams(r *http.Request) (serviceID, folderKind, imageName string) {
	query := r.URL.Query()
	serviceID = query.Get(constants.QueryParamServiceID)
	folderKind = query.Get(constants.QueryParamFolderType)
	if folderKind == "" {
		folderKind = constants.FolderKindGallery
	}
	imageName = query.Get(constants.QueryParamImageName)
	return serviceID, folderKind, imageName
}

// ListImages returns the catalog of a service's gallery folder, or of
// every service's folder when no service is named.
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	serviceID, folderKind, _ := galleryParams(r)

	var entries []gallery.Entry
	var err error
	if serviceID == "" {
		entries, err = h.catalog.ListAll(folderKind)
	} else {
		entries, err = h.catalog.List(serviceID, folderKind)
	}
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"success": constants.ResponseSuccess,
		"message": constants.MsgImagesListed,
		"count":   len(entries),
		"images":  entries,
	})
}

// ServeImage streams one watermarked image to a session holder. The stored
// original is never sent; every response is composited on the fly.
func (h *GalleryHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	serviceID, folderKind, imageName := galleryParams(r)

	img, err := h.resolver.Resolve(serviceID, folderKind, imageName)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	file, err := os.Open(img.Path)
	if err != nil {
		log.Error().Err(err).Str("image", img.Name).Msg("Failed to open resolved image")
		utils.InternalServerError(w, err)
		return
	}
	defer file.Close()

	variant := watermark.VariantFull
	if folderKind == constants.FolderKindGalleryHalf {
		variant = watermark.VariantSubtle
	}

	marked, format, err := h.marker.Apply(file, variant)
	if err != nil {
		log.Error().Err(err).Str("image", img.Name).Msg("Watermarking failed")
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	w.Header().Set(constants.HeaderContentType, watermark.ContentType(format))
	w.Header().Set(constants.HeaderContentLength, strconv.Itoa(len(marked)))
	w.Header().Set(constants.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", img.Name))
	w.Header().Set(constants.HeaderCacheControl, constants.CacheControlPublicYear)
	w.WriteHeader(constants.StatusOK)
	if _, err := w.Write(marked); err != nil {
		log.Debug().Err(err).Str("image", img.Name).Msg("Client aborted image download")
	}
}

// UploadImage stores a manager-submitted image in a service's gallery folder.
// The client-supplied filename is sanitized before it touches the filesystem.
func (h *GalleryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		utils.BadRequest(w, constants.MsgRequestBodyTooLarge, nil)
		return
	}

	serviceID := r.FormValue(constants.QueryParamServiceID)
	folderKind := r.FormValue(constants.QueryParamFolderType)
	if folderKind == "" {
		folderKind = constants.FolderKindGallery
	}

	file, header, err := r.FormFile(constants.FormFieldImage)
	if err != nil {
		utils.BadRequest(w, constants.MsgNotAnImage, map[string]string{
			constants.FormFieldImage: "multipart image field is required",
		})
		return
	}
	defer file.Close()

	imageName := utils.SanitizeFilename(header.Filename)
	if imageName == "" {
		utils.BadRequest(w, constants.MsgInvalidImageName, nil)
		return
	}

	img, err := h.storage.Save(serviceID, folderKind, imageName, file)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusCreated, map[string]interface{}{
		"success":                      constants.ResponseSuccess,
		"message":                      constants.MsgImageUploaded,
		"filename":                     img.Name,
		constants.QueryParamServiceID:  img.ServiceID,
		constants.QueryParamFolderType: img.FolderKind,
		"url":                          h.catalog.ServeURL(img.ServiceID, img.FolderKind, img.Name),
	})
}

// DeleteImage removes an image on behalf of a manager.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	serviceID, folderKind, imageName := galleryParams(r)

	if err := h.storage.Delete(serviceID, folderKind, imageName); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"success": constants.ResponseSuccess,
		"message": constants.MsgImageDeleted,
	})
}
