// Package v1 defines the dashboard.v1.Dashboard gRPC service.
//
// Messages are plain Go structs carried by the JSON codec in pkg/grpc/codec;
// clients created with NewDashboardClient select it automatically.
package v1

import (
	"context"

	"github.com/ritik2105/market-dashboard/pkg/grpc/codec"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "dashboard.v1.Dashboard"

const (
	Dashboard_GetFilterOptions_FullMethodName   = "/dashboard.v1.Dashboard/GetFilterOptions"
	Dashboard_GetSalesTable_FullMethodName      = "/dashboard.v1.Dashboard/GetSalesTable"
	Dashboard_GetMonthlyAverages_FullMethodName = "/dashboard.v1.Dashboard/GetMonthlyAverages"
	Dashboard_CompareModels_FullMethodName      = "/dashboard.v1.Dashboard/CompareModels"
)

type FilterOptionsRequest struct{}

type FilterOptionsResponse struct {
	Years          []int32  `json:"years"`
	DefaultYears   []int32  `json:"default_years"`
	EquipmentTypes []string `json:"equipment_types"`
	Models         []string `json:"models"`
}

// SelectionRequest is shared by every view that depends on the current filter.
type SelectionRequest struct {
	Years         []int32 `json:"years"`
	EquipmentType string  `json:"equipment_type"`
	Model         string  `json:"model"`
}

func (x *SelectionRequest) GetYears() []int32 {
	if x != nil {
		return x.Years
	}
	return nil
}

func (x *SelectionRequest) GetEquipmentType() string {
	if x != nil {
		return x.EquipmentType
	}
	return ""
}

func (x *SelectionRequest) GetModel() string {
	if x != nil {
		return x.Model
	}
	return ""
}

type SalesRow struct {
	// Date is formatted as YYYY-MM-DD.
	Date          string  `json:"date"`
	EquipmentType string  `json:"equipment_type"`
	UnitsSold     float64 `json:"units_sold"`
	Predicted     float64 `json:"predicted"`
}

type SalesTableResponse struct {
	Model         string      `json:"model"`
	EquipmentType string      `json:"equipment_type"`
	Rows          []*SalesRow `json:"rows"`
}

type MonthlyPoint struct {
	// Month is formatted as YYYY-MM.
	Month         string  `json:"month"`
	MeanActual    float64 `json:"mean_actual"`
	MeanPredicted float64 `json:"mean_predicted"`
	Count         int64   `json:"count"`
}

type MonthlyAveragesResponse struct {
	Points []*MonthlyPoint `json:"points"`
}

type ModelError struct {
	Model string  `json:"model"`
	Mae   float64 `json:"mae"`
}

type CompareModelsResponse struct {
	Errors []*ModelError `json:"errors"`
}

// DashboardClient is the client API for the Dashboard service.
type DashboardClient interface {
	GetFilterOptions(ctx context.Context, in *FilterOptionsRequest, opts ...grpc.CallOption) (*FilterOptionsResponse, error)
	GetSalesTable(ctx context.Context, in *SelectionRequest, opts ...grpc.CallOption) (*SalesTableResponse, error)
	GetMonthlyAverages(ctx context.Context, in *SelectionRequest, opts ...grpc.CallOption) (*MonthlyAveragesResponse, error)
	CompareModels(ctx context.Context, in *SelectionRequest, opts ...grpc.CallOption) (*CompareModelsResponse, error)
}

type dashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) DashboardClient {
	return &dashboardClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
}

func (c *dashboardClient) GetFilterOptions(ctx context.Context, in *FilterOptionsRequest, opts ...grpc.CallOption) (*FilterOptionsResponse, error) {
	out := new(FilterOptionsResponse)
	if err := c.cc.Invoke(ctx, Dashboard_GetFilterOptions_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) GetSalesTable(ctx context.Context, in *SelectionRequest, opts ...grpc.CallOption) (*SalesTableResponse, error) {
	out := new(SalesTableResponse)
	if err := c.cc.Invoke(ctx, Dashboard_GetSalesTable_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) GetMonthlyAverages(ctx context.Context, in *SelectionRequest, opts ...grpc.CallOption) (*MonthlyAveragesResponse, error) {
	out := new(MonthlyAveragesResponse)
	if err := c.cc.Invoke(ctx, Dashboard_GetMonthlyAverages_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) CompareModels(ctx context.Context, in *SelectionRequest, opts ...grpc.CallOption) (*CompareModelsResponse, error) {
	out := new(CompareModelsResponse)
	if err := c.cc.Invoke(ctx, Dashboard_CompareModels_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardServer is the server API for the Dashboard service.
// Implementations must embed UnimplementedDashboardServer.
type DashboardServer interface {
	GetFilterOptions(context.Context, *FilterOptionsRequest) (*FilterOptionsResponse, error)
	GetSalesTable(context.Context, *SelectionRequest) (*SalesTableResponse, error)
	GetMonthlyAverages(context.Context, *SelectionRequest) (*MonthlyAveragesResponse, error)
	CompareModels(context.Context, *SelectionRequest) (*CompareModelsResponse, error)
	mustEmbedUnimplementedDashboardServer()
}

type UnimplementedDashboardServer struct{}

func (UnimplementedDashboardServer) GetFilterOptions(context.Context, *FilterOptionsRequest) (*FilterOptionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFilterOptions not implemented")
}
func (UnimplementedDashboardServer) GetSalesTable(context.Context, *SelectionRequest) (*SalesTableResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalesTable not implemented")
}
func (UnimplementedDashboardServer) GetMonthlyAverages(context.Context, *SelectionRequest) (*MonthlyAveragesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMonthlyAverages not implemented")
}
func (UnimplementedDashboardServer) CompareModels(context.Context, *SelectionRequest) (*CompareModelsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompareModels not implemented")
}
func (UnimplementedDashboardServer) mustEmbedUnimplementedDashboardServer() {}

func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&Dashboard_ServiceDesc, srv)
}

func _Dashboard_GetFilterOptions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FilterOptionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetFilterOptions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_GetFilterOptions_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetFilterOptions(ctx, req.(*FilterOptionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dashboard_GetSalesTable_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SelectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetSalesTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_GetSalesTable_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetSalesTable(ctx, req.(*SelectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dashboard_GetMonthlyAverages_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SelectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetMonthlyAverages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_GetMonthlyAverages_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).GetMonthlyAverages(ctx, req.(*SelectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dashboard_CompareModels_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SelectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).CompareModels(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Dashboard_CompareModels_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardServer).CompareModels(ctx, req.(*SelectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var Dashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFilterOptions", Handler: _Dashboard_GetFilterOptions_Handler},
		{MethodName: "GetSalesTable", Handler: _Dashboard_GetSalesTable_Handler},
		{MethodName: "GetMonthlyAverages", Handler: _Dashboard_GetMonthlyAverages_Handler},
		{MethodName: "CompareModels", Handler: _Dashboard_CompareModels_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/dashboard.go",
}
