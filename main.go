// main.go
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/effisoft/nutrilab-api/config"
	"github.com/effisoft/nutrilab-api/cronjobs"
	"github.com/effisoft/nutrilab-api/endpoint"
	"github.com/effisoft/nutrilab-api/middleware"
	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Patient{},
		&model.Nutritionist{},
		&model.PackageType{},
		&model.PurchasedPackage{},
		&model.Appointment{},
		&model.AppointmentNote{},
		&model.PaymentMethod{},
		&model.CardPaymentType{},
		&model.PatientPayment{},
		&model.NutritionistPaymentPeriod{},
		&model.User{},
		&model.Role{},
		&model.Session{},
		&model.SecurityLog{},
	)
}

func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	if err := migrate(db); err != nil {
		log.Fatalf("error migrating schema: %v", err)
	}
	util.SetSecurityLoggerDB(db)

	// Redis backs the login rate limiter and the per-user session sets; the
	// API stays functional without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("redis unavailable, rate limiting disabled: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	router.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Login)
	router.POST("/signup", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Signup)
	router.GET("/token/validate", endpoint.ValidateToken)
	router.POST("/logout", endpoint.Logout)

	api := router.Group("/", middleware.ValidateSessionToken())
	{
		api.POST("/patient", endpoint.CreatePatient)
		api.GET("/patient", endpoint.ListPatients)
		api.GET("/patient/:id", endpoint.GetPatient)
		api.PUT("/patient/:id", endpoint.UpdatePatient)
		api.DELETE("/patient/:id", endpoint.DeactivatePatient)
		api.GET("/patient/:id/packages", endpoint.ListPatientPackages)
		api.GET("/patient/:id/appointments", endpoint.ListPatientAppointments)

		api.POST("/nutritionist", endpoint.CreateNutritionist)
		api.GET("/nutritionist", endpoint.ListNutritionists)
		api.GET("/nutritionist/:id", endpoint.GetNutritionist)
		api.PUT("/nutritionist/:id", endpoint.UpdateNutritionist)
		api.DELETE("/nutritionist/:id", endpoint.DeactivateNutritionist)
		api.GET("/nutritionist/:id/appointments", endpoint.ListNutritionistAppointments)

		api.POST("/package-type", endpoint.CreatePackageType)
		api.GET("/package-type", endpoint.ListPackageTypes)
		api.GET("/package-type/options", endpoint.ListPackageTypeOptions)
		api.GET("/package-type/:id", endpoint.GetPackageType)
		api.PUT("/package-type/:id", endpoint.UpdatePackageType)
		api.DELETE("/package-type/:id", endpoint.DeactivatePackageType)

		api.POST("/payment-method", endpoint.CreatePaymentMethod)
		api.GET("/payment-method", endpoint.ListPaymentMethods)
		api.GET("/payment-method/:id", endpoint.GetPaymentMethod)
		api.PUT("/payment-method/:id", endpoint.UpdatePaymentMethod)
		api.DELETE("/payment-method/:id", endpoint.DeletePaymentMethod)

		api.POST("/card-payment-type", endpoint.CreateCardPaymentType)
		api.GET("/card-payment-type", endpoint.ListCardPaymentTypes)
		api.GET("/card-payment-type/:id", endpoint.GetCardPaymentType)
		api.PUT("/card-payment-type/:id", endpoint.UpdateCardPaymentType)
		api.DELETE("/card-payment-type/:id", endpoint.DeactivateCardPaymentType)
		api.GET("/card-payment-type/:id/quote", endpoint.QuoteCardPayment)

		api.POST("/purchased-package", endpoint.CreatePurchasedPackage)
		api.GET("/purchased-package", endpoint.ListPurchasedPackages)
		api.GET("/purchased-package/:id", endpoint.GetPurchasedPackage)
		api.PUT("/purchased-package/:id", endpoint.UpdatePurchasedPackage)
		api.GET("/purchased-package/:id/valid", endpoint.CheckPackageValidity)
		api.GET("/purchased-package/:id/payments", endpoint.GetPackagePayments)

		api.POST("/appointment", endpoint.ScheduleAppointment)
		api.GET("/appointment/upcoming", endpoint.ListUpcomingAppointments)
		api.GET("/appointment/:id", endpoint.GetAppointment)
		api.PUT("/appointment/:id/status", endpoint.UpdateAppointmentStatus)
		api.PUT("/appointment/:id/cancel", endpoint.CancelAppointment)
		api.POST("/appointment/:id/notes", endpoint.CreateAppointmentNote)
		api.GET("/appointment/:id/notes", endpoint.ListAppointmentNotes)

		api.POST("/patient-payment", endpoint.RecordPayment)
		api.GET("/patient-payment/package/:id", endpoint.ListPackagePayments)

		api.POST("/payment-period", endpoint.CreatePaymentPeriod)
		api.GET("/payment-period", endpoint.ListPaymentPeriods)
		api.GET("/payment-period/:id", endpoint.GetPaymentPeriod)
		api.PUT("/payment-period/:id", endpoint.UpdatePaymentPeriod)
		api.PUT("/payment-period/:id/process", endpoint.ProcessPaymentPeriod)
		api.PUT("/payment-period/:id/cancel", endpoint.CancelPaymentPeriod)
	}

	sweeper := cronjobs.NewSweeper(db)
	scheduler := sweeper.Start()
	defer scheduler.Stop()

	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
