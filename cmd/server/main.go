package main

import (
	"context"
	"flag"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/auth/gate"
	"github.com/distribution-auth/sessiongate/config"
)

// Route names referenced by the publicRoutes configuration.
const (
	routeLogin  = "login"
	routeLogout = "logout"
	routeMe     = "me"
)

func main() {
	var (
		configFile string
		addr       string
		debug      bool
		err        error

		cert    string
		certKey string
	)

	flag.StringVar(&configFile, "config", "config.yaml", "Configuration file")
	flag.StringVar(&addr, "addr", "localhost:8080", "Address to listen on")
	flag.BoolVar(&debug, "debug", false, "Debug mode")

	flag.StringVar(&cert, "tlscert", "", "Certificate file for TLS")
	flag.StringVar(&certKey, "tlskey", "", "Certificate key for TLS")

	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	if debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	}

	defer logger.Sync()

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		logger.Sugar().Fatalf("Error loading configuration %s: %v", configFile, err)
	}

	err = cfg.Validate()
	if err != nil {
		logger.Sugar().Fatalf("Invalid configuration: %v", err)
	}

	accessTokens, err := cfg.AccessToken.Config.CreateAccessTokenService()
	if err != nil {
		logger.Sugar().Fatalf("Error creating access token service: %v", err)
	}

	refreshTokens, err := cfg.RefreshToken.Config.CreateRefreshTokenService()
	if err != nil {
		logger.Sugar().Fatalf("Error creating refresh token service: %v", err)
	}

	authenticator, err := cfg.PasswordAuthenticator.Config.CreatePasswordAuthenticator()
	if err != nil {
		logger.Sugar().Fatalf("Error creating password authenticator: %v", err)
	}

	repository, err := cfg.Store.Config.CreateRefreshRecordRepository(context.Background())
	if err != nil {
		logger.Sugar().Fatalf("Error creating refresh record store: %v", err)
	}

	if closer, ok := repository.(io.Closer); ok {
		defer closer.Close()
	}

	cookies := auth.CookieOptions{Secure: cfg.Cookies.Secure}

	service := auth.SessionServiceImpl{
		Authenticator: authenticator,
		TokenIssuer: auth.TokenIssuer{
			AccessTokenIssuer:  accessTokens,
			RefreshTokenIssuer: refreshTokens,
		},
		Repository: repository,
		Logger:     logger,
	}

	server := auth.SessionServer{
		Service: service,
		Cookies: cookies,
	}

	sessionGate := gate.New(accessTokens, refreshTokens, repository, gate.WithLogger(logger), gate.WithCookieOptions(cookies))
	routes := gate.NewRouteTable(cfg.PublicRoutes...)

	router := newRouter(server, sessionGate, routes)

	logger.Sugar().Infof("Listening on %s", addr)

	if cert == "" {
		err = http.ListenAndServe(addr, router)
	} else if certKey == "" {
		logger.Sugar().Fatalf("Must provide certficate (-tlscert) and key (-tlskey)")
	} else {
		err = http.ListenAndServeTLS(addr, cert, certKey, router)
	}

	if err != nil {
		logger.Sugar().Infof("Error serving: %v", err)
	}
}

func newRouter(server auth.SessionServer, sessionGate *gate.Gate, routes *gate.RouteTable) *mux.Router {
	router := mux.NewRouter()
	routes.Public(router.Path("/login").Methods("POST").HandlerFunc(server.LoginHandler).Name(routeLogin))

	// Logout must clear stale cookies even when the gate no longer recognizes the session.
	routes.Public(router.Path("/logout").Methods("POST").HandlerFunc(server.LogoutHandler).Name(routeLogout))

	router.Path("/me").Methods("GET").HandlerFunc(server.MeHandler).Name(routeMe)
	router.Use(sessionGate.Middleware(routes))

	return router
}
