package app

import (
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/calleja/devgear/internal/adapters/httpserver"
	"github.com/calleja/devgear/internal/adapters/repo/postgres"
	"github.com/calleja/devgear/internal/domain"
	"github.com/calleja/devgear/internal/usecase"
)

type App struct {
	DB         *gorm.DB
	CatalogUC  *usecase.CatalogUC
	PurchaseUC *usecase.PurchaseUC
	AuthUC     *usecase.AuthUC
}

func NewApp(db *gorm.DB) (*App, error) {
	catalogRepo := postgres.NewCatalogRepo(db)
	purchaseRepo := postgres.NewPurchaseRepo(db)
	userRepo := postgres.NewUserRepo(db)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("SECRET_KEY")
	}
	if secret == "" {
		secret = "dev-insecure-secret"
	}

	app := &App{}
	app.DB = db
	app.CatalogUC = &usecase.CatalogUC{Catalog: catalogRepo}
	app.PurchaseUC = &usecase.PurchaseUC{Purchases: purchaseRepo}
	app.AuthUC = &usecase.AuthUC{Users: userRepo, Secret: []byte(secret), TTL: 24 * time.Hour}

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.PurchaseUC, a.AuthUC)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.SalePrice{}, &domain.ProductMetadata{}, &domain.SaleCategory{},
		&domain.User{}, &domain.Purchase{}, &domain.PurchaseItem{},
	); err != nil {
		return err
	}

	// one active sale price per product, enforced at the store
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_sale_prices_product_unique ON sale_prices (product_id)").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_product_metadata_product_unique ON product_metadata (product_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_purchases_user_id ON purchases (user_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_purchase_items_purchase_id ON purchase_items (purchase_id)").Error

	var count int64
	if err := a.DB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		seedCatalog(a.DB)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func seedCatalog(db *gorm.DB) {
	cats := []domain.SaleCategory{
		{Name: "flash", Description: "Limited-time flash deals"},
		{Name: "clearance", Description: "Last units at clearance prices"},
		{Name: "bundle", Description: "Bundled developer tool deals"},
	}
	for _, c := range cats {
		db.Create(&c)
	}

	prods := []domain.Product{
		{Name: "Mechanical Keyboard", Description: "Hot-swappable 75% board with tactile switches", Image: strPtr("/img/keyboard.jpg"), Price: "129.00"},
		{Name: "4K Monitor", Description: "27-inch IPS panel calibrated for long coding sessions", Image: strPtr("/img/monitor.jpg"), Price: "349.00"},
		{Name: "USB-C Dock", Description: "Dual display dock with 100W passthrough", Image: strPtr("/img/dock.jpg"), Price: "89.00"},
		{Name: "Noise-Cancelling Headphones", Description: "Over-ear headphones for open offices", Image: strPtr("/img/headphones.jpg"), Price: "199.00"},
		{Name: "Laptop Stand", Description: "Aluminium stand, six height presets", Image: strPtr("/img/stand.jpg"), Price: "45.00"},
		{Name: "Webcam", Description: "1080p60 webcam with auto low-light correction", Image: strPtr("/img/webcam.jpg"), Price: "79.00"},
	}
	for i := range prods {
		db.Create(&prods[i])
	}

	sales := []domain.SalePrice{
		{ProductID: prods[0].ID, SalePrice: "99.00"},
		{ProductID: prods[1].ID, SalePrice: "279.00"},
		{ProductID: prods[3].ID, SalePrice: "149.00"},
		{ProductID: prods[5].ID, SalePrice: "59.00"},
	}
	for _, sp := range sales {
		db.Create(&sp)
	}

	meta := []domain.ProductMetadata{
		{ProductID: prods[0].ID, Discount: strPtr("23%"), SaleCategory: strPtr("flash"), Featured: true, Priority: 10},
		{ProductID: prods[1].ID, Discount: strPtr("20%"), SaleCategory: strPtr("clearance"), Priority: 5},
		{ProductID: prods[3].ID, Discount: strPtr("25%"), SaleCategory: strPtr("flash"), Priority: 5},
	}
	for _, m := range meta {
		db.Create(&m)
	}
}
