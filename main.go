package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DeanThompson/ginpprof"
	"github.com/Kellerman81/holmes_admin/api"
	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/config"
	"github.com/Kellerman81/holmes_admin/configuration"
	"github.com/Kellerman81/holmes_admin/i18n"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/Kellerman81/holmes_admin/settings"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginlog "github.com/toorop/gin-logrus"
)

func loggerConfig(cfg config.GeneralConfig) logger.LoggerConfig {
	return logger.LoggerConfig{
		LogLevel:     cfg.LogLevel,
		LogFileName:  cfg.LogFileName,
		LogFileSize:  cfg.LogFileSize,
		LogFileCount: cfg.LogFileCount,
		LogCompress:  cfg.LogCompress,
	}
}

func main() {
	configfile := flag.String("config", config.Configfile, "path of the toml configuration")
	flag.Parse()

	cfg, f, err := config.LoadCfg(*configfile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.InitLogger(loggerConfig(cfg.General))
	logger.Log.Infoln("Starting holmes_admin")
	logger.Log.Infoln("Backend:", cfg.Backend.BaseURL)
	logger.Log.Infoln("------------------------------")

	if cfg.General.EnableFileWatcher {
		config.Watch(f, *configfile, func(reloaded config.MainConfig) {
			logger.SetLevel(reloaded.General.LogLevel)
			logger.Log.Infoln("Config reloaded, log level", reloaded.General.LogLevel)
		})
	}

	bundle, err := i18n.Load(cfg.UI.Locale, cfg.UI.BundleDir)
	if err != nil {
		logger.Log.WithError(err).Fatalln("message bundle not loaded")
	}
	logger.Log.Infoln("Locale", bundle.Locale())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := apiexternal.NewHolmesClient(cfg.Backend)
	grids, err := configuration.NewGridController(ctx, client, bundle, cfg.UI.RowCacheTTL(), cfg.UI.GridHeight)
	if err != nil {
		logger.Log.WithError(err).Fatalln("grid controller not created")
	}
	defer grids.Close()

	renderer := api.Renderer{}
	admin := &api.Admin{
		Grids:    grids,
		Config:   configuration.NewConfigForm(client, bundle, cfg.UI.LegacyConfigErrorMessage),
		Settings: settings.NewView(client, renderer, bundle),
		Lookup:   bundle,
		Render:   renderer,
	}

	if !strings.EqualFold(cfg.General.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginlog.Logger(logger.Log), gin.Recovery())
	if len(cfg.General.CorsOrigins) > 0 {
		corscfg := cors.DefaultConfig()
		corscfg.AllowOrigins = cfg.General.CorsOrigins
		corscfg.AllowHeaders = append(corscfg.AllowHeaders, "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL")
		corscfg.ExposeHeaders = []string{"HX-Retarget", "HX-Reswap"}
		router.Use(cors.New(corscfg))
	}

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin")
	})
	api.AddHealthRoute(router)
	admin.AddRoutes(router.Group("/admin"))

	if cfg.General.EnablePprof {
		ginpprof.Wrap(router)
	}

	logger.Log.Infoln("Starting webserver on", cfg.ListenAddr())
	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Infoln("receive interrupt signal")

	shutdownctx, shutdowncancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdowncancel()
	if err := server.Shutdown(shutdownctx); err != nil {
		logger.Log.WithError(err).Errorln("Server Shutdown")
	}

	logger.Log.Infoln("Server exiting")
}
