package resolver

import (
	"fmt"
	"strings"

	"trip-booking/internal/catalog"
	"trip-booking/internal/database"
	"trip-booking/internal/models"
	"trip-booking/internal/pagination"
	"trip-booking/pkg/logger"
	"trip-booking/pkg/metrics"

	"github.com/graphql-go/graphql"
)

// Resolver wires the launch catalog and the booking store behind the
// GraphQL schema. The GraphQL engine parses incoming queries and calls the
// Resolve funcs below with parsed arguments and the per-request context.
type Resolver struct {
	store   database.Service
	catalog catalog.Service
	log     logger.Logger
	metrics *metrics.Metrics
	schema  graphql.Schema
}

func New(store database.Service, cat catalog.Service, log logger.Logger, m *metrics.Metrics) (*Resolver, error) {
	r := &Resolver{
		store:   store,
		catalog: cat,
		log:     log,
		metrics: m,
	}
	if err := r.buildSchema(); err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	return r, nil
}

// Schema returns the executable schema.
func (r *Resolver) Schema() graphql.Schema {
	return r.schema
}

func (r *Resolver) buildSchema() error {
	patchSizeEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "PatchSize",
		Values: graphql.EnumValueConfigMap{
			"SMALL": &graphql.EnumValueConfig{Value: "SMALL"},
			"LARGE": &graphql.EnumValueConfig{Value: "LARGE"},
		},
	})

	missionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mission",
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
			"missionPatch": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"size": &graphql.ArgumentConfig{
						Type:         patchSizeEnum,
						DefaultValue: "LARGE",
					},
				},
				Resolve: r.resolveMissionPatch,
			},
		},
	})

	rocketType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Rocket",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.ID},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	launchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Launch",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"site":    &graphql.Field{Type: graphql.String},
			"mission": &graphql.Field{Type: missionType},
			"rocket":  &graphql.Field{Type: rocketType},
			"isBooked": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Resolve: r.resolveIsBooked,
			},
		},
	})

	launchConnectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LaunchConnection",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					conn, ok := p.Source.(models.LaunchConnection)
					if !ok || conn.Cursor == "" {
						return nil, nil
					}
					return conn.Cursor, nil
				},
			},
			"hasMore":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"launches": &graphql.Field{Type: graphql.NewList(launchType)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"email": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"trips": &graphql.Field{
				Type:    graphql.NewList(launchType),
				Resolve: r.resolveUserTrips,
			},
		},
	})

	tripUpdateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TripUpdateResponse",
		Fields: graphql.Fields{
			"success":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"message":  &graphql.Field{Type: graphql.String},
			"launches": &graphql.Field{Type: graphql.NewList(launchType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"launches": &graphql.Field{
				Type: launchConnectionType,
				Args: graphql.FieldConfigArgument{
					"pageSize": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						DefaultValue: pagination.DefaultPageSize,
					},
					"after": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.resolveLaunches,
			},
			"launch": &graphql.Field{
				Type: launchType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveLaunch,
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveMe,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveLogin,
			},
			"bookTrips": &graphql.Field{
				Type: tripUpdateType,
				Args: graphql.FieldConfigArgument{
					"launchIds": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))),
					},
				},
				Resolve: r.resolveBookTrips,
			},
			"cancelTrip": &graphql.Field{
				Type: tripUpdateType,
				Args: graphql.FieldConfigArgument{
					"launchId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.resolveCancelTrip,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return err
	}
	r.schema = schema
	return nil
}

func (r *Resolver) resolveLaunches(p graphql.ResolveParams) (interface{}, error) {
	pageSize, _ := p.Args["pageSize"].(int)
	after, _ := p.Args["after"].(string)

	all, err := r.catalog.GetAll(p.Context)
	if err != nil {
		r.metrics.Errors.WithLabelValues("launches").Inc()
		return nil, err
	}

	// The catalog returns oldest first; we page most recent first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	conn, err := pagination.Paginate(all, after, pageSize)
	if err != nil {
		r.metrics.Errors.WithLabelValues("launches").Inc()
		return nil, err
	}
	return conn, nil
}

func (r *Resolver) resolveLaunch(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)

	launch, err := r.catalog.GetByID(p.Context, id)
	if err != nil {
		r.metrics.Errors.WithLabelValues("launch").Inc()
		return nil, err
	}
	if launch == nil {
		// Unknown id is a valid negative answer, not a failure.
		return nil, nil
	}
	return *launch, nil
}

func (r *Resolver) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	user, err := r.currentUser(p)
	if err != nil {
		r.metrics.Errors.WithLabelValues("me").Inc()
		return nil, err
	}
	return user, nil
}

func (r *Resolver) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)

	user, err := r.store.FindOrCreateUser(email)
	if err != nil {
		// Absence of a token is how login failure is reported.
		r.log.Error("login failed", "email", email, "error", err)
		r.metrics.Errors.WithLabelValues("login").Inc()
		return nil, nil
	}
	r.log.Info("user logged in", "user_id", user.ID)
	return EncodeToken(user.Email), nil
}

func (r *Resolver) resolveBookTrips(p graphql.ResolveParams) (interface{}, error) {
	ids, err := idListArg(p.Args["launchIds"])
	if err != nil {
		return nil, err
	}

	user, err := r.currentUser(p)
	if err != nil {
		return nil, err
	}

	booked, err := r.store.BookTrips(user.ID, ids)
	if err != nil {
		r.metrics.Errors.WithLabelValues("bookTrips").Inc()
		return nil, err
	}

	// The response reports on what was attempted, so launches are looked
	// up for every requested id that the catalog can resolve. A catalog
	// failure here does not roll the bookings back.
	launches, err := r.catalog.GetByIDs(p.Context, ids)
	if err != nil {
		r.metrics.Errors.WithLabelValues("bookTrips").Inc()
		return nil, err
	}

	r.metrics.TripsBooked.Add(float64(len(booked)))

	if len(booked) == len(ids) {
		return models.TripUpdateResponse{
			Success:  true,
			Message:  "trips booked successfully",
			Launches: launches,
		}, nil
	}

	bookedSet := make(map[string]struct{}, len(booked))
	for _, id := range booked {
		bookedSet[id] = struct{}{}
	}
	var failed []string
	for _, id := range ids {
		if _, ok := bookedSet[id]; !ok {
			failed = append(failed, id)
		}
	}

	return models.TripUpdateResponse{
		Success:  false,
		Message:  fmt.Sprintf("the following launches couldn't be booked: %s", strings.Join(failed, ",")),
		Launches: launches,
	}, nil
}

func (r *Resolver) resolveCancelTrip(p graphql.ResolveParams) (interface{}, error) {
	launchID, _ := p.Args["launchId"].(string)

	user, err := r.currentUser(p)
	if err != nil {
		return nil, err
	}

	cancelled, err := r.store.CancelTrip(user.ID, launchID)
	if err != nil {
		r.metrics.Errors.WithLabelValues("cancelTrip").Inc()
		return nil, err
	}
	if !cancelled {
		return models.TripUpdateResponse{
			Success:  false,
			Message:  "failed to cancel trip",
			Launches: []models.Launch{},
		}, nil
	}

	r.metrics.TripsCancelled.Inc()

	launch, err := r.catalog.GetByID(p.Context, launchID)
	if err != nil {
		r.metrics.Errors.WithLabelValues("cancelTrip").Inc()
		return nil, err
	}
	launches := []models.Launch{}
	if launch != nil {
		launches = append(launches, *launch)
	}
	return models.TripUpdateResponse{
		Success:  true,
		Message:  "trip cancelled",
		Launches: launches,
	}, nil
}

// resolveIsBooked decorates each launch with the requesting user's booking
// state. It runs once per item; results are never shared between items or
// users.
func (r *Resolver) resolveIsBooked(p graphql.ResolveParams) (interface{}, error) {
	launch, ok := launchFromSource(p.Source)
	if !ok {
		return nil, fmt.Errorf("isBooked resolved against non-launch source %T", p.Source)
	}
	user, err := r.currentUser(p)
	if err != nil {
		return nil, err
	}
	booked, err := r.store.IsBooked(user.ID, launch.ID)
	if err != nil {
		r.metrics.Errors.WithLabelValues("isBooked").Inc()
		return nil, err
	}
	return booked, nil
}

func (r *Resolver) resolveMissionPatch(p graphql.ResolveParams) (interface{}, error) {
	mission, ok := p.Source.(models.Mission)
	if !ok {
		return nil, fmt.Errorf("missionPatch resolved against non-mission source %T", p.Source)
	}
	if size, _ := p.Args["size"].(string); size == "SMALL" {
		return mission.MissionPatchSmall, nil
	}
	return mission.MissionPatchLarge, nil
}

func (r *Resolver) resolveUserTrips(p graphql.ResolveParams) (interface{}, error) {
	user, ok := userFromSource(p.Source)
	if !ok {
		return nil, fmt.Errorf("trips resolved against non-user source %T", p.Source)
	}

	ids, err := r.store.GetBookedLaunchIDs(user.ID)
	if err != nil {
		r.metrics.Errors.WithLabelValues("trips").Inc()
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Launch{}, nil
	}
	launches, err := r.catalog.GetByIDs(p.Context, ids)
	if err != nil {
		r.metrics.Errors.WithLabelValues("trips").Inc()
		return nil, err
	}
	return launches, nil
}

// currentUser resolves the caller's identity for this request: the user
// injected by the transport, or the demo user when the request carried no
// usable token.
func (r *Resolver) currentUser(p graphql.ResolveParams) (*models.User, error) {
	if user, ok := UserFromContext(p.Context); ok {
		return user, nil
	}
	return r.store.FindOrCreateUser("")
}

func launchFromSource(source interface{}) (models.Launch, bool) {
	switch l := source.(type) {
	case models.Launch:
		return l, true
	case *models.Launch:
		if l != nil {
			return *l, true
		}
	}
	return models.Launch{}, false
}

func userFromSource(source interface{}) (*models.User, bool) {
	switch u := source.(type) {
	case *models.User:
		return u, u != nil
	case models.User:
		return &u, true
	}
	return nil, false
}

func idListArg(raw interface{}) ([]string, error) {
	values, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("launchIds must be a list of ids")
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("launch id must be a string, got %T", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
