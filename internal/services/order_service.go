package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"
	"supply-route-service/internal/ports"
)

// Notification codes returned to clients.
const (
	CodeRouteCreated     = "route_created"
	CodeMessageSent      = "message_sent"
	CodeValidation       = "validation_failed"
	CodeNoFeasibleSupply = "no_feasible_supply"
	CodeProviderError    = "provider_error"
	CodeOverlayError     = "overlay_error"
	CodeSuperseded       = "superseded"
	CodeSessionNotFound  = "session_not_found"
	CodeSupplyNotFound   = "supply_not_found"
	CodeMessagingError   = "messaging_error"
	CodeInternal         = "internal_error"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

type OrderServiceDeps struct {
	Catalog     ports.SupplyCatalog
	Matcher     *Matcher
	Synthesizer *RouteSynthesizer
	Overlay     *OverlaySynchronizer
	Geocoder    ports.Geocoder
	Messenger   ports.Messenger
	Materials   []domain.Material
	NewMap      func() ports.InteractiveMap
}

// OrderService is the boundary between callers and the matching/routing
// engine. It owns the map sessions, runs match -> synthesize -> render for a
// session, and turns every outcome into a single Notification.
type OrderService struct {
	catalog   ports.SupplyCatalog
	matcher   *Matcher
	synth     *RouteSynthesizer
	overlay   *OverlaySynchronizer
	geocoder  ports.Geocoder
	messenger ports.Messenger
	materials []domain.Material
	newMap    func() ports.InteractiveMap

	sessions *SessionStore
}

func NewOrderService(deps OrderServiceDeps) (*OrderService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("order service: catalog is required")
	}
	if deps.Synthesizer == nil {
		return nil, errors.New("order service: route synthesizer is required")
	}
	if deps.NewMap == nil {
		return nil, errors.New("order service: map factory is required")
	}

	svc := &OrderService{
		catalog:   deps.Catalog,
		matcher:   deps.Matcher,
		synth:     deps.Synthesizer,
		overlay:   deps.Overlay,
		geocoder:  deps.Geocoder,
		messenger: deps.Messenger,
		materials: deps.Materials,
		newMap:    deps.NewMap,
		sessions:  NewSessionStore(),
	}
	if svc.matcher == nil {
		svc.matcher = NewMatcher(nil)
	}
	if svc.overlay == nil {
		svc.overlay = NewOverlaySynchronizer()
	}
	if svc.materials == nil {
		svc.materials = domain.DefaultMaterials
	}

	return svc, nil
}

func (o *OrderService) Materials() []domain.Material { return o.materials }

func (o *OrderService) Catalog() ports.SupplyCatalog { return o.catalog }

// CreateSession opens a map session and wires the supply layer click handler.
func (o *OrderService) CreateSession(origin domain.Coordinates) (*Session, error) {
	if !origin.Valid() {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("invalid origin %s", origin)}
	}

	s := newSession(o.newMap(), origin)
	s.Map.OnFeatureClick(domain.SupplyLayerID, func(ctx context.Context, featureID string) domain.Notification {
		return o.RouteToLocation(ctx, s.ID, featureID)
	})
	o.sessions.add(s)

	log.Printf("session created: id=%s origin=%s", s.ID, origin)
	return s, nil
}

func (o *OrderService) Session(id string) (*Session, error) {
	return o.sessions.Get(id)
}

// DestroySession tears down the map and its overlays, cancelling any
// pipeline still running for it.
func (o *OrderService) DestroySession(id string) error {
	s, ok := o.sessions.remove(id)
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.close()
	log.Printf("session destroyed: id=%s", id)
	return nil
}

// SetOrigin moves the session origin to coords, or to the geocoded address
// when coords is nil.
func (o *OrderService) SetOrigin(
	ctx context.Context,
	sessionID string,
	coords *domain.Coordinates,
	address string,
) (domain.Coordinates, error) {
	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return domain.Coordinates{}, err
	}

	var origin domain.Coordinates
	switch {
	case coords != nil:
		origin = *coords
	case strings.TrimSpace(address) != "":
		if o.geocoder == nil {
			return domain.Coordinates{}, errors.New("set origin: geocoding is not configured")
		}
		origin, err = o.geocoder.Geocode(ctx, address)
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("set origin: geocode %q: %w", address, err)
		}
	default:
		return domain.Coordinates{}, &domain.ValidationError{Reason: "origin coordinates or address required"}
	}

	if !origin.Valid() {
		return domain.Coordinates{}, &domain.ValidationError{Reason: fmt.Sprintf("invalid origin %s", origin)}
	}

	s.setOrigin(origin)
	return origin, nil
}

// PlanRoute matches demands to supply, fetches the optimized roundtrip and
// renders it on the session map.
func (o *OrderService) PlanRoute(ctx context.Context, sessionID string, demands []domain.Demand) (n domain.Notification) {
	ctx = obs.WithSessionID(ctx, sessionID)
	var err error
	defer func() {
		if !n.OK() {
			err = errors.New(n.Code)
		}
		obs.Time(ctx, "order.PlanRoute")(&err)
	}()

	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return notificationFromError(err)
	}

	normalized, err := domain.NormalizeDemands(demands, o.materials)
	if err != nil {
		return notificationFromError(err)
	}

	return o.run(ctx, s, func(ctx context.Context, origin domain.Coordinates) ([]domain.Assignment, error) {
		return o.matcher.MatchAll(ctx, normalized, o.catalog, origin)
	})
}

// RouteToLocation routes from the session origin to one supply location and
// back. It backs clicks on the supply layer.
func (o *OrderService) RouteToLocation(ctx context.Context, sessionID string, supplyID string) domain.Notification {
	ctx = obs.WithSessionID(ctx, sessionID)

	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return notificationFromError(err)
	}

	return o.run(ctx, s, func(ctx context.Context, origin domain.Coordinates) ([]domain.Assignment, error) {
		loc, err := o.catalog.SupplyLocation(ctx, supplyID)
		if err != nil {
			return nil, err
		}
		return []domain.Assignment{{
			Demand:     domain.Demand{Material: loc.Material},
			Location:   loc,
			DistanceKm: o.matcher.Distance(origin, loc.Coordinates),
		}}, nil
	})
}

type resolveFunc func(ctx context.Context, origin domain.Coordinates) ([]domain.Assignment, error)

func (o *OrderService) run(ctx context.Context, s *Session, resolve resolveFunc) domain.Notification {
	gen, runCtx, release, err := s.begin(ctx)
	if err != nil {
		return notificationFromError(err)
	}
	defer release()

	origin := s.Origin()
	if !origin.Valid() {
		return notificationFromError(&domain.ValidationError{Reason: "session origin is not set"})
	}

	assignments, err := resolve(runCtx, origin)
	if err != nil {
		if stale := s.stale(gen); stale != nil {
			return notificationFromError(stale)
		}
		return notificationFromError(err)
	}

	stops := make([]domain.Coordinates, 0, len(assignments))
	for _, a := range assignments {
		stops = append(stops, a.Location.Coordinates)
	}

	route, err := o.synth.Synthesize(runCtx, origin, stops)
	if err != nil {
		if stale := s.stale(gen); stale != nil {
			return notificationFromError(stale)
		}
		log.Printf("route synthesis failed: session=%s err=%v", s.ID, err)
		return notificationFromError(err)
	}

	link := DirectionsLink(origin, stops)
	err = s.commit(gen, func() error {
		return o.overlay.RenderRoute(s.Map, route, origin)
	}, route, link)
	if err != nil {
		if !errors.Is(err, domain.ErrSuperseded) && !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("overlay update failed: session=%s err=%v", s.ID, err)
		}
		return notificationFromError(err)
	}

	return domain.Notification{
		Severity:    domain.SeveritySuccess,
		Code:        CodeRouteCreated,
		Message:     fmt.Sprintf("Optimized route created. Total distance: %s km.", route.DistanceLabel),
		Route:       &route,
		Assignments: assignments,
		ShareLink:   link,
	}
}

// Share sends the link of the session's current route to a phone number.
func (o *OrderService) Share(ctx context.Context, sessionID string, to string) domain.Notification {
	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return notificationFromError(err)
	}

	to = strings.Join(strings.Fields(to), "")
	if !phonePattern.MatchString(to) {
		return notificationFromError(&domain.ValidationError{Reason: fmt.Sprintf("invalid phone number %q", to)})
	}

	_, link, ok := s.LastRoute()
	if !ok {
		return notificationFromError(&domain.ValidationError{Reason: "create a route before sharing it"})
	}

	if o.messenger == nil {
		return domain.Notification{Severity: domain.SeverityError, Code: CodeMessagingError, Message: "Messaging is not configured."}
	}

	res, err := o.messenger.Send(ctx, to, ShareMessage(link))
	if err != nil {
		log.Printf("send route link failed: session=%s err=%v", sessionID, err)
		return domain.Notification{Severity: domain.SeverityError, Code: CodeMessagingError, Message: "Error: " + err.Error(), ShareLink: link}
	}
	if !res.Success {
		return domain.Notification{Severity: domain.SeverityError, Code: CodeMessagingError, Message: "Error: " + res.Error, ShareLink: link}
	}

	return domain.Notification{Severity: domain.SeveritySuccess, Code: CodeMessageSent, Message: "Message sent!", ShareLink: link}
}

func (o *OrderService) Layers(sessionID string) ([]domain.Layer, error) {
	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Layers(), nil
}

func (o *OrderService) ApplyLayerAction(sessionID string, action domain.LayerAction) ([]domain.Layer, error) {
	s, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.applyLayerAction(action)
}

// notificationFromError converts an engine error into the user-visible form.
func notificationFromError(err error) domain.Notification {
	var (
		ve *domain.ValidationError
		ne *domain.NoFeasibleSupplyError
		pe *domain.ProviderError
		oe *domain.OverlayError
	)

	switch {
	case errors.As(err, &ve):
		return domain.Notification{Severity: domain.SeverityWarning, Code: CodeValidation, Message: ve.Reason}
	case errors.As(err, &ne):
		return domain.Notification{
			Severity: domain.SeverityWarning,
			Code:     CodeNoFeasibleSupply,
			Message:  fmt.Sprintf("No location can supply: %s.", strings.Join(ne.Materials(), ", ")),
			Unmet:    ne.Materials(),
		}
	case errors.As(err, &pe):
		return domain.Notification{Severity: domain.SeverityError, Code: CodeProviderError, Message: "The route cannot be generated."}
	case errors.As(err, &oe):
		return domain.Notification{Severity: domain.SeverityError, Code: CodeOverlayError, Message: "The route could not be drawn on the map."}
	case errors.Is(err, domain.ErrSuperseded):
		return domain.Notification{Severity: domain.SeverityInfo, Code: CodeSuperseded, Message: "A newer route request replaced this one."}
	case errors.Is(err, domain.ErrSessionNotFound):
		return domain.Notification{Severity: domain.SeverityError, Code: CodeSessionNotFound, Message: "Map session not found."}
	case errors.Is(err, domain.ErrSupplyNotFound):
		return domain.Notification{Severity: domain.SeverityWarning, Code: CodeSupplyNotFound, Message: "Supply location not found."}
	default:
		log.Printf("unexpected order error: %v", err)
		return domain.Notification{Severity: domain.SeverityError, Code: CodeInternal, Message: "Something went wrong."}
	}
}
