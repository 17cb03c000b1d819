package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	services "github.com/nfredmond/project-manager/service"
)

// UploadDocument stores the multipart "file" and records it with the title,
// category and project_id form fields.
func (c *AgencyController) UploadDocument(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	var req services.DocumentInput
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form fields", "details": err.Error()})
		return
	}

	doc, err := c.documents.UploadFromForm(ctx.Request.Context(), middleware.Tenant(ctx).ID, middleware.UserID(ctx), req, file, header)
	if err != nil {
		c.respondError(ctx, "Failed to upload document", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"path":     doc.StoragePath,
		"document": doc,
	})
}

// UploadFile stores a file without recording it and returns its path, for
// clients that attach files to other records.
func (c *AgencyController) UploadFile(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	path, err := c.documents.UploadFile(ctx.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		c.respondError(ctx, "Failed to upload file", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"path": path})
}

func (c *AgencyController) CreateDocument(ctx *gin.Context) {
	var req services.DocumentInput
	if !bindJSON(ctx, &req) {
		return
	}
	doc, err := c.documents.CreateDocument(ctx.Request.Context(), middleware.Tenant(ctx).ID, middleware.UserID(ctx), req)
	if err != nil {
		c.respondError(ctx, "Failed to create document", err)
		return
	}
	ctx.JSON(http.StatusCreated, doc)
}

func (c *AgencyController) GetDocuments(ctx *gin.Context) {
	docs, err := c.documents.ListDocuments(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve documents", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
}

func (c *AgencyController) SearchDocuments(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}
	results, err := c.documents.SearchDocuments(ctx.Request.Context(), middleware.Tenant(ctx).ID, query)
	if err != nil {
		c.respondError(ctx, "Failed to search documents", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"results": results,
	})
}
