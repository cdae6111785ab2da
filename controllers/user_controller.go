// File: /controllers/user_controller.go
package controllers

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"net/http"
	"tripcrew-api/models"
	"tripcrew-api/services"
)

type UserController struct {
	db      *gorm.DB
	storage *services.StorageService
}

func NewUserController(db *gorm.DB, storage *services.StorageService) *UserController {
	return &UserController{db: db, storage: storage}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Age       *int    `json:"age"`
		Bio       *string `json:"bio"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) > 0 {
		if err := uc.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UploadAvatar stores a new avatar image. An upload failure keeps the
// previous avatar instead of failing the request: the client treats the
// avatar as a soft part of the profile save.
func (uc *UserController) UploadAvatar(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required"})
		return
	}

	if uc.storage == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Avatar upload unavailable, previous avatar kept",
			"avatar":  user.Avatar,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read avatar file"})
		return
	}
	defer file.Close()

	url, err := uc.storage.UploadAvatar(c.Request.Context(), userID, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		// Soft failure: keep the previous avatar rather than blocking the save
		fmt.Printf("Warning: Avatar upload failed for user %s: %v\n", userID, err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Avatar upload failed, previous avatar kept",
			"avatar":  user.Avatar,
		})
		return
	}

	if err := uc.db.Model(&user).Update("avatar", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Avatar updated successfully",
		"avatar":  url,
	})
}

// GetUserSummary returns the public display fields of any user, used to
// attribute chat messages and participant lists.
func (uc *UserController) GetUserSummary(c *gin.Context) {
	targetID := c.Param("id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user.Summary())
}
