package handlers

import (
	"errors"
	"net/http"

	"clinic-backoffice-api/internal/auth"
	"clinic-backoffice-api/internal/database"
	"clinic-backoffice-api/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string      `json:"username" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token        string      `json:"token"`
	EmployeeID   int         `json:"employee_id"`
	EmployeeName string      `json:"employee_name"`
	Role         models.Role `json:"role"`
	Message      string      `json:"message"`
}

// Login handles the login endpoint. Unknown usernames are created on first
// login with the supplied password; known usernames must match theirs.
// POST /api/login
func Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	var employee models.Employee
	err := database.GetDB().Where("username = ?", req.Username).First(&employee).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
		role := req.Role
		if !models.ValidRole(role) {
			role = models.RoleReception
		}
		name := req.Name
		if name == "" {
			name = req.Username
		}
		employee = models.Employee{
			Username: req.Username,
			Password: string(hashed),
			Name:     name,
			Role:     role,
		}
		if createErr := database.GetDB().Create(&employee).Error; createErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return
	default:
		if bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
	}

	token, err := auth.GenerateToken(employee.ID, employee.Name, employee.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:        token,
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Role:         employee.Role,
		Message:      "Login successful",
	})
}
