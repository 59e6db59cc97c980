package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LoyaltyServiceName is the fully-qualified name of the loyalty RPC service.
const LoyaltyServiceName = "loyalty.v1.LoyaltyService"

// Procedure paths of the loyalty RPC service.
const (
	ListCampaignsProcedure      = "/" + LoyaltyServiceName + "/ListCampaigns"
	ListClientsProcedure        = "/" + LoyaltyServiceName + "/ListClients"
	GetCampaignFormProcedure    = "/" + LoyaltyServiceName + "/GetCampaignForm"
	SubmitCampaignFormProcedure = "/" + LoyaltyServiceName + "/SubmitCampaignForm"
	EnrollClientProcedure       = "/" + LoyaltyServiceName + "/EnrollClient"
	RecordVisitProcedure        = "/" + LoyaltyServiceName + "/RecordVisit"
)

// LoyaltyServer adapts LoyaltyService to connect unary handlers.
type LoyaltyServer struct {
	svc *LoyaltyService
}

// NewLoyaltyServer creates a LoyaltyServer instance
func NewLoyaltyServer(svc *LoyaltyService) *LoyaltyServer {
	return &LoyaltyServer{svc: svc}
}

// NewLoyaltyServiceHandler builds an HTTP handler serving every procedure of
// the service. It returns the path to mount the handler on.
func NewLoyaltyServiceHandler(svc *LoyaltyService, opts ...connect.HandlerOption) (string, http.Handler) {
	s := NewLoyaltyServer(svc)
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListCampaignsProcedure, connect.NewUnaryHandler(ListCampaignsProcedure, s.ListCampaigns, opts...))
	mux.Handle(ListClientsProcedure, connect.NewUnaryHandler(ListClientsProcedure, s.ListClients, opts...))
	mux.Handle(GetCampaignFormProcedure, connect.NewUnaryHandler(GetCampaignFormProcedure, s.GetCampaignForm, opts...))
	mux.Handle(SubmitCampaignFormProcedure, connect.NewUnaryHandler(SubmitCampaignFormProcedure, s.SubmitCampaignForm, opts...))
	mux.Handle(EnrollClientProcedure, connect.NewUnaryHandler(EnrollClientProcedure, s.EnrollClient, opts...))
	mux.Handle(RecordVisitProcedure, connect.NewUnaryHandler(RecordVisitProcedure, s.RecordVisit, opts...))
	return "/" + LoyaltyServiceName + "/", mux
}

// ListCampaigns returns the owner's campaigns with their counters
func (s *LoyaltyServer) ListCampaigns(
	ctx context.Context,
	req *connect.Request[ListCampaignsRequest],
) (*connect.Response[ListCampaignsResponse], error) {
	d, err := s.svc.Dashboard(ctx, req.Msg.OwnerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListCampaignsResponse{Dashboard: d}), nil
}

// ListClients returns the client list for a campaign scope and query
func (s *LoyaltyServer) ListClients(
	ctx context.Context,
	req *connect.Request[ListClientsRequest],
) (*connect.Response[ListClientsResponse], error) {
	page, err := s.svc.ClientsView(ctx, req.Msg.OwnerID, req.Msg.CampaignID, req.Msg.Query)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListClientsResponse{ClientsPage: page}), nil
}

// GetCampaignForm returns the values a campaign form opens with
func (s *LoyaltyServer) GetCampaignForm(
	ctx context.Context,
	req *connect.Request[GetCampaignFormRequest],
) (*connect.Response[GetCampaignFormResponse], error) {
	mode, values, err := s.svc.CampaignForm(ctx, req.Msg.OwnerID, req.Msg.CampaignID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetCampaignFormResponse{Mode: mode, Values: values}), nil
}

// SubmitCampaignForm creates or updates a campaign from form edits
func (s *LoyaltyServer) SubmitCampaignForm(
	ctx context.Context,
	req *connect.Request[SubmitCampaignFormRequest],
) (*connect.Response[SubmitCampaignFormResponse], error) {
	res, err := s.svc.SubmitCampaignForm(ctx, req.Msg.OwnerID, req.Msg.CampaignID, req.Msg.Edits)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SubmitCampaignFormResponse{Result: res}), nil
}

// EnrollClient adds a client to a campaign
func (s *LoyaltyServer) EnrollClient(
	ctx context.Context,
	req *connect.Request[EnrollClientRequest],
) (*connect.Response[EnrollClientResponse], error) {
	c, err := s.svc.EnrollClient(ctx, req.Msg.OwnerID, req.Msg.EnrollInput)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&EnrollClientResponse{Client: c}), nil
}

// RecordVisit registers a client visit
func (s *LoyaltyServer) RecordVisit(
	ctx context.Context,
	req *connect.Request[RecordVisitRequest],
) (*connect.Response[RecordVisitResponse], error) {
	c, err := s.svc.RecordVisit(ctx, req.Msg.OwnerID, req.Msg.ClientID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordVisitResponse{Client: c}), nil
}

// LoyaltyServiceClient calls the loyalty RPC service.
type LoyaltyServiceClient struct {
	listCampaigns      *connect.Client[ListCampaignsRequest, ListCampaignsResponse]
	listClients        *connect.Client[ListClientsRequest, ListClientsResponse]
	getCampaignForm    *connect.Client[GetCampaignFormRequest, GetCampaignFormResponse]
	submitCampaignForm *connect.Client[SubmitCampaignFormRequest, SubmitCampaignFormResponse]
	enrollClient       *connect.Client[EnrollClientRequest, EnrollClientResponse]
	recordVisit        *connect.Client[RecordVisitRequest, RecordVisitResponse]
}

// NewLoyaltyServiceClient creates a client for the service at baseURL, e.g.
// http://localhost:8080.
func NewLoyaltyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LoyaltyServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &LoyaltyServiceClient{
		listCampaigns: connect.NewClient[ListCampaignsRequest, ListCampaignsResponse](
			httpClient, baseURL+ListCampaignsProcedure, opts...),
		listClients: connect.NewClient[ListClientsRequest, ListClientsResponse](
			httpClient, baseURL+ListClientsProcedure, opts...),
		getCampaignForm: connect.NewClient[GetCampaignFormRequest, GetCampaignFormResponse](
			httpClient, baseURL+GetCampaignFormProcedure, opts...),
		submitCampaignForm: connect.NewClient[SubmitCampaignFormRequest, SubmitCampaignFormResponse](
			httpClient, baseURL+SubmitCampaignFormProcedure, opts...),
		enrollClient: connect.NewClient[EnrollClientRequest, EnrollClientResponse](
			httpClient, baseURL+EnrollClientProcedure, opts...),
		recordVisit: connect.NewClient[RecordVisitRequest, RecordVisitResponse](
			httpClient, baseURL+RecordVisitProcedure, opts...),
	}
}

func (c *LoyaltyServiceClient) ListCampaigns(ctx context.Context, req *connect.Request[ListCampaignsRequest]) (*connect.Response[ListCampaignsResponse], error) {
	return c.listCampaigns.CallUnary(ctx, req)
}

func (c *LoyaltyServiceClient) ListClients(ctx context.Context, req *connect.Request[ListClientsRequest]) (*connect.Response[ListClientsResponse], error) {
	return c.listClients.CallUnary(ctx, req)
}

func (c *LoyaltyServiceClient) GetCampaignForm(ctx context.Context, req *connect.Request[GetCampaignFormRequest]) (*connect.Response[GetCampaignFormResponse], error) {
	return c.getCampaignForm.CallUnary(ctx, req)
}

func (c *LoyaltyServiceClient) SubmitCampaignForm(ctx context.Context, req *connect.Request[SubmitCampaignFormRequest]) (*connect.Response[SubmitCampaignFormResponse], error) {
	return c.submitCampaignForm.CallUnary(ctx, req)
}

func (c *LoyaltyServiceClient) EnrollClient(ctx context.Context, req *connect.Request[EnrollClientRequest]) (*connect.Response[EnrollClientResponse], error) {
	return c.enrollClient.CallUnary(ctx, req)
}

func (c *LoyaltyServiceClient) RecordVisit(ctx context.Context, req *connect.Request[RecordVisitRequest]) (*connect.Response[RecordVisitResponse], error) {
	return c.recordVisit.CallUnary(ctx, req)
}
