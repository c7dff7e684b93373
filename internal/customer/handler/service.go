package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/grpcjson"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.customer.v1.CustomerService"

type GetProfileRequest struct{}

type UpdatePhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type ProfileResponse struct {
	Customer *model.Customer `json:"customer"`
}

type CustomerServiceServer interface {
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpdatePhone(context.Context, *UpdatePhoneRequest) (*ProfileResponse, error)
}

var CustomerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CustomerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProfile", Handler: grpcjson.Unary("/"+serviceName+"/GetProfile", CustomerServiceServer.GetProfile)},
		{MethodName: "UpdatePhone", Handler: grpcjson.Unary("/"+serviceName+"/UpdatePhone", CustomerServiceServer.UpdatePhone)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/customer/v1/customer.json",
}

func RegisterCustomerServiceServer(s grpc.ServiceRegistrar, srv CustomerServiceServer) {
	s.RegisterService(&CustomerServiceDesc, srv)
}
