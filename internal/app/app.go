package app

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"

	"subgate/internal/auth"
	"subgate/internal/config"
	"subgate/internal/downstream"
	"subgate/internal/gateway"
	"subgate/internal/oauth"
	"subgate/pkg/logging"
)

// Application wires the gateway together: the OAuth client and callback
// handler for interactive logins, the delegated token source, the downstream
// client, and the MCP server, all mounted on a single HTTP server.
type Application struct {
	cfg         config.Config
	oauthClient *oauth.Client
	httpServer  *http.Server
}

// New assembles an application from validated configuration.
func New(cfg config.Config, version string) *Application {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Scopes:       cfg.Provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.Provider.AuthorizationEndpoint,
			TokenURL:  cfg.Provider.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	oauthClient := oauth.NewClient(oauthConfig, oauth.NewPendingTracker(), &oauth.TokenSlot{})
	callbackHandler := oauth.NewHandler(oauthClient)

	delegated := auth.NewDelegatedTokenSource(&clientcredentials.Config{
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		TokenURL:     cfg.Provider.TokenEndpoint,
		Scopes:       []string{cfg.Downstream.Scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}, &oauth.TokenSlot{})

	downstreamClient := downstream.NewClient(cfg.Downstream.BaseURL, version, cfg.DownstreamTimeout())
	invoker := gateway.NewInvoker(auth.NewScopeValidator(), delegated, downstreamClient)
	mcpServer := gateway.NewServer(gateway.NewService(invoker), oauthClient, version)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.MCPPath, mcpServer.Handler())
	mux.HandleFunc(cfg.Server.CallbackPath, callbackHandler.HandleCallback)

	return &Application{
		cfg:         cfg,
		oauthClient: oauthClient,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddress(),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("App", "Gateway listening on %s (MCP at %s, callback at %s)",
			a.cfg.ListenAddress(), a.cfg.Server.MCPPath, a.cfg.Server.CallbackPath)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logging.Info("App", "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("App", err, "HTTP server shutdown")
		}

		a.oauthClient.Stop()
		return nil
	})

	return g.Wait()
}
