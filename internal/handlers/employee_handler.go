package handlers

import (
	"net/http"

	"clinic-backoffice-api/internal/database"
	"clinic-backoffice-api/internal/models"

	"github.com/gin-gonic/gin"
)

type EmployeeResponse struct {
	ID   int         `json:"id"`
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// GetAllEmployees returns all employees (protected)
// GET /api/employees
func GetAllEmployees(c *gin.Context) {
	var employees []models.Employee
	if err := database.GetDB().Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees"})
		return
	}

	// Map to safe response payload
	resp := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, EmployeeResponse{
			ID:   e.ID,
			Name: e.Name,
			Role: e.Role,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": resp,
		"count":     len(resp),
	})
}
