package handler

import (
	"net/http"

	"github.com/MuhammedFaaik/f66/internal/dao"
	"github.com/MuhammedFaaik/f66/internal/service"
	"github.com/MuhammedFaaik/f66/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register
func HandleRegister(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := dao.GetUserByEmail(req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	}
	if _, err := dao.GetUserByUsername(req.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username taken"})
		return
	}

	hashed, err := service.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	if err := dao.CreateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"uid": user.ID, "message": "user created successfully"})
}

// Login
func HandleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := dao.GetUserByEmail(req.Email)
	if err != nil || !service.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := service.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"uid":      user.ID,
		"username": user.Username,
	})
}

// Profile
func HandleProfile(c *gin.Context) {
	uid, _ := c.Get("uid")

	user, err := dao.GetUserByID(uint(uid.(int64)))
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch profile failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":        user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"level":      user.Level,
		"experience": user.Experience,
	})
}
