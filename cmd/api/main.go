package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/auth"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/business"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/config"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/db"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/deals"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/mailer"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/middleware"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/referrals"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/storage"
	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/stripe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	log.SetFormatter(&log.JSONFormatter{})
	if cfg.AppEnv == "development" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	r2, err := storage.NewR2Client(ctx, storage.R2Config{
		Endpoint:      cfg.R2Endpoint,
		AccessKey:     cfg.R2AccessKey,
		SecretKey:     cfg.R2SecretKey,
		Bucket:        cfg.R2Bucket,
		PublicBaseURL: cfg.R2PublicBaseURL,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialise object storage")
	}

	smtpMailer := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	stripeClient := stripe.NewClient(cfg.StripeSecretKey)

	// repositories
	userRepo := auth.NewPostgresUserRepository(pool)
	otpRepo := auth.NewPostgresOTPRepository(pool)
	businessRepo := business.NewRepository(pool)
	dealRepo := deals.NewRepository(pool)
	referralRepo := referrals.NewRepository(pool)

	// services
	authService := auth.NewService(userRepo, otpRepo, smtpMailer)
	dealService := deals.NewService(dealRepo, businessRepo)
	businessService := business.NewService(businessRepo, authService, dealService)
	referralService := referrals.NewService(referralRepo, userRepo, businessRepo,
		stripeClient, smtpMailer, cfg.PublicBaseURL)

	// handlers
	authHandler := auth.NewHandler(authService, businessService)
	businessHandler := business.NewHandler(businessService)
	dealHandler := deals.NewHandler(dealService)
	referralHandler := referrals.NewHandler(referralService,
		cfg.StripeWebhookSecret, cfg.FrontendURL)
	uploadHandler := storage.NewHandler(r2)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register/", authHandler.Register)
		authRoutes.POST("/business/register/", businessHandler.Register)
		authRoutes.POST("/verify-otp/", authHandler.VerifyOTP)
		authRoutes.POST("/resend-otp/", authHandler.ResendOTP)
		authRoutes.POST("/login/", authHandler.Login)
		authRoutes.POST("/business/login/", authHandler.BusinessLogin)
		authRoutes.POST("/refresh/", authHandler.Refresh)
		authRoutes.POST("/logout/", authHandler.Logout)
		authRoutes.GET("/business/:id/profile/", businessHandler.PublicProfile)

		protected := authRoutes.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile/", authHandler.Profile)
			protected.PATCH("/profile/", authHandler.UpdateProfile)
			protected.POST("/change-password/", authHandler.ChangePassword)
			protected.PATCH("/business/:id/update_business/", businessHandler.Update)
		}
	}

	dealRoutes := r.Group("/deals")
	{
		dealRoutes.GET("/all/", dealHandler.ListAll)
		dealRoutes.GET("/industries/all/", dealHandler.Industries)
		dealRoutes.GET("/deal-poster/options/", dealHandler.PosterOptions)
		dealRoutes.GET("/:id/", dealHandler.Get)
		dealRoutes.GET("/:id/by-business/", dealHandler.ByBusiness)

		owner := dealRoutes.Group("")
		owner.Use(middleware.AuthMiddleware(), middleware.RequireRole(auth.UserTypeBusiness))
		{
			owner.POST("/", dealHandler.Create)
			owner.GET("/my/", dealHandler.MyDeals)
			owner.PUT("/:id/", dealHandler.Update)
			owner.PATCH("/:id/", dealHandler.Update)
		}
	}

	referralRoutes := r.Group("/referrals")
	{
		referralRoutes.GET("/verify/", referralHandler.Verify)
		referralRoutes.POST("/create-payment/", referralHandler.CreatePayment)
		referralRoutes.POST("/webhook/", referralHandler.Webhook)

		authed := referralRoutes.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/subscribe/", referralHandler.Subscribe)
			authed.POST("/unsubscribe/", referralHandler.Unsubscribe)
			authed.GET("/my-subscriptions", referralHandler.MySubscriptions)
			authed.GET("/:businessId/subscribers", referralHandler.Subscribers)
			authed.POST("/onboarding/create-link/", referralHandler.CreateOnboardingLink)
			authed.GET("/onboarding/status/", referralHandler.OnboardingStatus)
		}
	}

	r.GET("/stripe/onboarding/redirect/", referralHandler.OnboardingRedirect)

	// Public: the registration wizard uploads logos before an account
	// exists.
	r.POST("/upload/", uploadHandler.Upload)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
