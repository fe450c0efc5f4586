package rest

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cloudy/internal/application/ports"
	"cloudy/internal/application/querybuilder"
	"cloudy/internal/domain/file"
	fileDTO "cloudy/internal/interface/api/rest/dto/file"
	"cloudy/internal/interface/api/rest/middleware"
	"cloudy/internal/interface/api/rest/validator"
)

const (
	formFieldFiles = "files"
	dashboardPath  = "/"
)

type FileController struct {
	fileService ports.FileService
	views       ports.ViewInvalidator
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	views ports.ViewInvalidator,
	logger *zap.Logger,
	authMW gin.HandlerFunc,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		views:       views,
		logger:      logger,
	}

	r.GET(RouteFiles, authMW, fc.ListFilesHandler)
	r.POST(RouteFiles, authMW, fc.UploadFilesHandler)
	r.PATCH(RouteFileName, authMW, fc.RenameFileHandler)
	r.PUT(RouteFileUsers, authMW, fc.UpdateFileUsersHandler)
	r.DELETE(RouteFile, authMW, fc.DeleteFileHandler)
	r.POST(RouteFileActions, authMW, fc.ApplyActionHandler)

	return fc
}

func (fc *FileController) ListFilesHandler(c *gin.Context) {
	types, err := validator.ParseTypes(c.Query("types"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := validator.ParseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u := middleware.CurrentUser(c)
	spec, err := querybuilder.Build(u, types, c.Query("query"), c.Query("sort"), limit)
	if err != nil {
		respondError(c, fc.logger, "build listing query", err)
		return
	}

	files, err := fc.fileService.List(c.Request.Context(), u, spec)
	if err != nil {
		respondError(c, fc.logger, "list files", err)
		return
	}

	fc.setViewVersion(c, viewPath(types))
	c.JSON(http.StatusOK, fileDTO.ResponseData{
		Data:  fileDTO.ToResponseFiles(files),
		Total: len(files),
	})
}

func (fc *FileController) UploadFilesHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	fhs := form.File[formFieldFiles]
	if len(fhs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files are required"})
		return
	}

	uploads, closeAll, err := openUploads(fhs)
	defer closeAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		fc.logger.Warn("open multipart file", zap.Error(err))
		return
	}

	results := fc.fileService.UploadBatch(c.Request.Context(), middleware.CurrentUser(c), uploads)

	var firstErr error
	created := 0
	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		created++
	}
	if created == 0 {
		respondError(c, fc.logger, "upload files", firstErr)
		return
	}

	c.JSON(http.StatusCreated, fileDTO.ToResponseUploads(results))
}

func (fc *FileController) RenameFileHandler(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req fileDTO.RenameRequest
	if !bindAndValidate(c, &req) {
		return
	}

	f, err := fc.fileService.Rename(c.Request.Context(), fileID, middleware.CurrentUser(c), req.Name)
	if err != nil {
		respondError(c, fc.logger, "rename file", err)
		return
	}

	c.JSON(http.StatusOK, fileDTO.ToResponseFile(*f))
}

func (fc *FileController) UpdateFileUsersHandler(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req fileDTO.ShareRequest
	if !bindAndValidate(c, &req) {
		return
	}

	f, err := fc.fileService.UpdateSharedUsers(c.Request.Context(), fileID, middleware.CurrentUser(c), req.Emails)
	if err != nil {
		respondError(c, fc.logger, "update file users", err)
		return
	}

	c.JSON(http.StatusOK, fileDTO.ToResponseFile(*f))
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	status, err := fc.fileService.Delete(c.Request.Context(), fileID, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, fc.logger, "delete file", err)
		return
	}

	c.JSON(http.StatusOK, fileDTO.DeleteResponse{Status: string(status)})
}

func (fc *FileController) ApplyActionHandler(c *gin.Context) {
	fileID, ok := fileIDParam(c)
	if !ok {
		return
	}

	var req fileDTO.ActionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	action, err := fileDTO.ToDomainAction(fileID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := fc.fileService.Apply(c.Request.Context(), middleware.CurrentUser(c), action)
	if err != nil {
		respondError(c, fc.logger, "apply "+req.Type, err)
		return
	}

	c.JSON(http.StatusOK, fileDTO.ToResponseAction(*res))
}

func (fc *FileController) setViewVersion(c *gin.Context, path string) {
	v, err := fc.views.Version(c.Request.Context(), path)
	if err != nil {
		fc.logger.Warn("view version lookup failed", zap.String("path", path), zap.Error(err))
		return
	}
	c.Header(HeaderViewVersion, strconv.FormatInt(v, 10))
}

// viewPath is the listing route a type filter corresponds to. Filters
// spanning several routes fall back to the dashboard.
func viewPath(types []file.Type) string {
	if len(types) == 0 {
		return dashboardPath
	}
	p := file.ListingPath(types[0])
	for _, t := range types[1:] {
		if file.ListingPath(t) != p {
			return dashboardPath
		}
	}
	return p
}

func openUploads(fhs []*multipart.FileHeader) ([]ports.Upload, func(), error) {
	uploads := make([]ports.Upload, 0, len(fhs))
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range fhs {
		src, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, src)
		uploads = append(uploads, ports.Upload{Name: fh.Filename, Size: fh.Size, Body: src})
	}
	return uploads, closeAll, nil
}

func fileIDParam(c *gin.Context) (file.ID, bool) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return file.ID{}, false
	}
	return id, true
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return false
	}
	if errs := validator.Struct(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return false
	}
	return true
}
