package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/grpcjson"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.notification.v1.NotificationService"

type ListNotificationsRequest struct {
	// UserID is honoured for admins only.
	UserID   string `json:"user_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type ListNotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Total         int                  `json:"total"`
	Page          int                  `json:"page,omitempty"`
	PageSize      int                  `json:"page_size,omitempty"`
}

type NotificationServiceServer interface {
	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
}

var NotificationServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*NotificationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListNotifications", Handler: grpcjson.Unary("/"+serviceName+"/ListNotifications", NotificationServiceServer.ListNotifications)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/notification/v1/notification.json",
}

func RegisterNotificationServiceServer(s grpc.ServiceRegistrar, srv NotificationServiceServer) {
	s.RegisterService(&NotificationServiceDesc, srv)
}
