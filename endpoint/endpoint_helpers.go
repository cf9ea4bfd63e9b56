package endpoint

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/effisoft/nutrilab-api/config"
	"github.com/effisoft/nutrilab-api/middleware"
	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// EndpointTestModels defines the standard set of models migrated for endpoint tests
var EndpointTestModels = []interface{}{
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
}

// setupEndpointTestDB initializes a test database with all standard models migrated.
// It sets the APPENV to "test" and initializes the JWT secret for the test.
// Cleanup is automatically registered via t.Cleanup().
func setupEndpointTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	t.Setenv("APPENV", "test")
	t.Setenv("JWTSECRET", "test-secret-123")
	util.SetJWTSecret("test-secret-123")
	config.ResetConfigForTest()

	db, err := config.ConnectDatabase()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}

	if err := db.AutoMigrate(EndpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	for _, m := range EndpointTestModels {
		db.Unscoped().Where("1 = 1").Delete(m)
	}

	t.Cleanup(func() {
		for _, m := range EndpointTestModels {
			_ = db.Migrator().DropTable(m)
		}
	})

	return db
}

// setupEndpointTest returns a Gin engine and database connection configured for endpoint tests.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupEndpointTestDB(t)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	return r, db
}

// performRequest issues an HTTP request against the engine with an optional
// JSON body and returns the recorder.
func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return response
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, w.Code, w.Body.String())
}

// Seed helpers used across the endpoint tests.

func seedPatient(t *testing.T, db *gorm.DB, email string) model.Patient {
	t.Helper()
	patient := model.Patient{FirstName: "Maria", LastName: "Lopez", Email: email, Phone: "5512345678", Active: true}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return patient
}

func seedNutritionist(t *testing.T, db *gorm.DB, email string) model.Nutritionist {
	t.Helper()
	nutritionist := model.Nutritionist{FirstName: "Ana", LastName: "Torres", Email: email, Phone: "5587654321", Active: true}
	if err := db.Create(&nutritionist).Error; err != nil {
		t.Fatalf("failed to seed nutritionist: %v", err)
	}
	return nutritionist
}

func seedPackageType(t *testing.T, db *gorm.DB, appointments int, price, rate string) model.PackageType {
	t.Helper()
	packageType := model.PackageType{
		Name:                 "Seguimiento",
		NumberOfAppointments: appointments,
		Price:                decimal.RequireFromString(price),
		NutritionistRate:     decimal.RequireFromString(rate),
		Active:               true,
	}
	if err := db.Create(&packageType).Error; err != nil {
		t.Fatalf("failed to seed package type: %v", err)
	}
	return packageType
}

func seedPaymentMethod(t *testing.T, db *gorm.DB, name string) model.PaymentMethod {
	t.Helper()
	method := model.PaymentMethod{Name: name, Active: true}
	if err := db.Create(&method).Error; err != nil {
		t.Fatalf("failed to seed payment method: %v", err)
	}
	return method
}

func seedPurchasedPackage(t *testing.T, db *gorm.DB, patient model.Patient, packageType model.PackageType, method model.PaymentMethod) model.PurchasedPackage {
	t.Helper()
	pkg := model.NewPurchasedPackage(patient.ID, &packageType, method.ID, nil, time.Now())
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("failed to seed purchased package: %v", err)
	}
	return pkg
}

func packageBalance(t *testing.T, db *gorm.DB, packageID uint) int {
	t.Helper()
	var pkg model.PurchasedPackage
	if err := db.First(&pkg, packageID).Error; err != nil {
		t.Fatalf("failed to reload purchased package: %v", err)
	}
	return pkg.RemainingAppointments
}
