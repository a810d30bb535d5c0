package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"clinic-backoffice-api/internal/cache"
	"clinic-backoffice-api/internal/database"
	"clinic-backoffice-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// scheduleCacheTTL bounds how stale a cached day schedule may get.
const scheduleCacheTTL = 30 * time.Second

// AppointmentAPI serves the appointment directory reception fills arrival
// announcements from. Day schedules are cached briefly because the front
// desk dashboard polls them aggressively.
type AppointmentAPI struct {
	schedules *cache.TTL[string, []models.Appointment]
}

func NewAppointmentAPI() *AppointmentAPI {
	return &AppointmentAPI{schedules: cache.NewTTL[string, []models.Appointment]()}
}

// CreateAppointmentRequest represents the request payload for creating an appointment
type CreateAppointmentRequest struct {
	CustomerID       int    `json:"customerId" binding:"required"`
	CustomerName     string `json:"customerName" binding:"required"`
	CustomerInitials string `json:"customerInitials"`
	ScheduledTime    string `json:"scheduledTime" binding:"required"`
	Date             string `json:"date" binding:"required"`
	PractitionerID   int    `json:"practitionerId"`
	PractitionerName string `json:"practitionerName"`
}

// UpdateAppointmentRequest represents the request payload for updating an appointment
type UpdateAppointmentRequest struct {
	CustomerName     *string `json:"customerName"`
	CustomerInitials *string `json:"customerInitials"`
	ScheduledTime    *string `json:"scheduledTime"`
	Date             *string `json:"date"`
	PractitionerID   *int    `json:"practitionerId"`
	PractitionerName *string `json:"practitionerName"`
}

// List handles GET /api/appointments
// Optional query params: date (defaults to today), practitionerId.
func (a *AppointmentAPI) List(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	practitionerIDStr := c.DefaultQuery("practitionerId", "0")
	practitionerID, err := strconv.Atoi(practitionerIDStr)
	if err != nil || practitionerID < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid practitionerId"})
		return
	}

	key := fmt.Sprintf("%s|%d", date, practitionerID)
	if appointments, ok := a.schedules.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{
			"appointments": appointments,
			"count":        len(appointments),
		})
		return
	}

	query := database.GetDB().Where("date = ?", date)
	if practitionerID > 0 {
		query = query.Where("practitioner_id = ?", practitionerID)
	}

	var appointments []models.Appointment
	if err := query.Order("scheduled_time asc").Find(&appointments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}

	a.schedules.Set(key, appointments, scheduleCacheTTL)
	c.JSON(http.StatusOK, gin.H{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// Create handles POST /api/appointments
func (a *AppointmentAPI) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appointment := models.Appointment{
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		CustomerInitials: req.CustomerInitials,
		ScheduledTime:    req.ScheduledTime,
		Date:             req.Date,
		PractitionerID:   req.PractitionerID,
		PractitionerName: req.PractitionerName,
	}
	if err := database.GetDB().Create(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create appointment"})
		return
	}

	a.schedules.Clear()
	c.JSON(http.StatusCreated, appointment)
}

// Update handles PUT /api/appointments/:id
func (a *AppointmentAPI) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	var appointment models.Appointment
	if err := database.GetDB().First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointment"})
		}
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.CustomerName != nil {
		appointment.CustomerName = *req.CustomerName
	}
	if req.CustomerInitials != nil {
		appointment.CustomerInitials = *req.CustomerInitials
	}
	if req.ScheduledTime != nil {
		appointment.ScheduledTime = *req.ScheduledTime
	}
	if req.Date != nil {
		appointment.Date = *req.Date
	}
	if req.PractitionerID != nil {
		appointment.PractitionerID = *req.PractitionerID
	}
	if req.PractitionerName != nil {
		appointment.PractitionerName = *req.PractitionerName
	}

	if err := database.GetDB().Save(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update appointment"})
		return
	}

	a.schedules.Clear()
	c.JSON(http.StatusOK, appointment)
}

// Delete handles DELETE /api/appointments/:id
func (a *AppointmentAPI) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment id"})
		return
	}

	result := database.GetDB().Delete(&models.Appointment{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete appointment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return
	}

	a.schedules.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
}
