package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"walkcourse-editor/internal/application"
	"walkcourse-editor/internal/domain/repository"
	"walkcourse-editor/internal/handler"
	"walkcourse-editor/internal/infrastructure/database"
	"walkcourse-editor/internal/infrastructure/firestore"
	"walkcourse-editor/internal/infrastructure/geo"
	myrepo "walkcourse-editor/internal/repository"
	"walkcourse-editor/internal/usecase"
)

const defaultNominatimServer = "https://nominatim.openstreetmap.org"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	ctx := context.Background()

	// 逆ジオコーディングと場所検索（必須）
	nominatimURL := os.Getenv("NOMINATIM_URL")
	if nominatimURL == "" {
		nominatimURL = defaultNominatimServer
	}
	fmt.Printf("Initializing Nominatim client (%s)...\n", nominatimURL)
	nominatimClient, err := geo.NewNominatimClient(nominatimURL)
	if err != nil {
		log.Fatalf("Nominatimクライアント初期化失敗: %v", err)
	}

	// 周辺POI検索用のPostgreSQL接続（任意）
	var placesRepo repository.PlacesRepository
	if os.Getenv("SUPABASE_DB_PASSWORD") != "" {
		fmt.Println("Initializing PostgreSQL client...")
		pgClient, err := database.NewPostgreSQLClientWithRetry(3, 5*time.Second)
		if err != nil {
			log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
		}
		defer pgClient.Close()
		placesRepo = myrepo.NewPostgresPlacesRepository(pgClient)
		fmt.Println("✅ PostgreSQL connection successful!")
	} else {
		fmt.Println("⚠️  SUPABASE_DB_PASSWORDが未設定のため、周辺POI検索なしで起動します")
	}

	geoLookup := geo.NewLookupProvider(nominatimClient, placesRepo)

	// セッション状態の一時保存用Firestore（任意）
	var sessionRepo repository.SessionStateRepository
	if projectID := os.Getenv("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		fmt.Println("Initializing Firestore client...")
		fsClient, err := firestore.NewFirestoreClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Firestoreクライアント初期化失敗: %v", err)
		}
		defer fsClient.Close()
		sessionRepo = myrepo.NewFirestoreSessionRepository(fsClient.GetClient())
	} else {
		fmt.Println("⚠️  GOOGLE_CLOUD_PROJECTが未設定のため、セッションの保存・再開なしで起動します")
	}

	sessionUseCase := usecase.NewSessionUseCase(geoLookup, sessionRepo)
	sessionHandler := handler.NewSessionHandler(sessionUseCase)

	// 完成したコースの保存用Supabase（任意）
	var coursesHandler *handler.CoursesHandler
	if os.Getenv("SUPABASE_URL") != "" && os.Getenv("SUPABASE_ANON_KEY") != "" {
		fmt.Println("Initializing Supabase client...")
		supabaseClient, err := database.NewSupabaseClient()
		if err != nil {
			log.Fatalf("Supabaseクライアント初期化失敗: %v", err)
		}
		coursesService := application.NewCoursesService(myrepo.NewSupabaseCoursesRepository(supabaseClient))
		coursesHandler = handler.NewCoursesHandler(coursesService)
	} else {
		fmt.Println("⚠️  SUPABASE_URL/SUPABASE_ANON_KEYが未設定のため、コース提出APIなしで起動します")
	}

	router := setupRouter(sessionHandler, coursesHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("walkcourse-editor server starting on :%s...\n", port)
	log.Fatal(router.Run(":" + port))
}

// setupRouter ルーティングの設定
func setupRouter(sessionHandler *handler.SessionHandler, coursesHandler *handler.CoursesHandler) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "walkcourse-editor"})
	})

	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.OpenSession)
		sessions.GET("/:id", sessionHandler.GetSession)
		sessions.DELETE("/:id", sessionHandler.CloseSession)
		sessions.POST("/:id/taps", sessionHandler.HandleMapTap)
		sessions.PUT("/:id/mode", sessionHandler.SetMode)
		sessions.POST("/:id/route/clear", sessionHandler.ClearRoute)
		sessions.POST("/:id/route/revert", sessionHandler.RevertLastRoutePoint)
		sessions.DELETE("/:id/spots/:index", sessionHandler.RemoveSpot)
		sessions.PUT("/:id/spots/:index/title", sessionHandler.UpdateSpotTitle)
		sessions.PUT("/:id/spots/:index/content", sessionHandler.UpdateSpotContent)
		sessions.POST("/:id/spots/:index/select", sessionHandler.SelectSpot)
		sessions.PUT("/:id/search/text", sessionHandler.ChangeSearchText)
		sessions.PUT("/:id/search/focus", sessionHandler.SetSearchFocus)
		sessions.POST("/:id/search/select", sessionHandler.SelectPlace)
		sessions.POST("/:id/resize", sessionHandler.NotifyResize)
		sessions.GET("/:id/snapshot", sessionHandler.GetSnapshot)
	}

	if coursesHandler != nil {
		courses := router.Group("/courses")
		{
			courses.POST("", coursesHandler.CreateCourse)
			courses.GET("", coursesHandler.GetCoursesByBoundingBox)
			courses.GET("/:id", coursesHandler.GetCourseDetail)
		}
	}

	return router
}
