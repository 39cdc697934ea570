package httpapi

import "encoding/xml"

// ResponseMetadata is the common trailer every action response carries,
// modeled on the teacher's gosqs/gosqs_structs.go ResponseMetadata.
type ResponseMetadata struct {
	RequestID string `xml:"RequestId"`
}

const xmlns = "http://queue.amazonaws.com/doc/2012-11-05/"

// ListQueuesResult/ListQueuesResponse mirror the teacher's struct of the
// same name, generalized to carry every queue URL rather than a fixed
// shape.
type ListQueuesResult struct {
	QueueURL []string `xml:"QueueUrl"`
}

type ListQueuesResponse struct {
	XMLName  xml.Name         `xml:"ListQueuesResponse"`
	Xmlns    string           `xml:"xmlns,attr"`
	Result   ListQueuesResult `xml:"ListQueuesResult"`
	Metadata ResponseMetadata `xml:"ResponseMetadata"`
}

type CreateQueueResult struct {
	QueueURL string `xml:"QueueUrl"`
}

type CreateQueueResponse struct {
	XMLName  xml.Name          `xml:"CreateQueueResponse"`
	Xmlns    string            `xml:"xmlns,attr"`
	Result   CreateQueueResult `xml:"CreateQueueResult"`
	Metadata ResponseMetadata  `xml:"ResponseMetadata"`
}

type GetQueueUrlResult struct {
	QueueURL string `xml:"QueueUrl"`
}

type GetQueueUrlResponse struct {
	XMLName  xml.Name          `xml:"GetQueueUrlResponse"`
	Xmlns    string            `xml:"xmlns,attr"`
	Result   GetQueueUrlResult `xml:"GetQueueUrlResult"`
	Metadata ResponseMetadata  `xml:"ResponseMetadata"`
}

type DeleteQueueResponse struct {
	XMLName  xml.Name         `xml:"DeleteQueueResponse"`
	Xmlns    string           `xml:"xmlns,attr"`
	Metadata ResponseMetadata `xml:"ResponseMetadata"`
}

type PurgeQueueResponse struct {
	XMLName  xml.Name         `xml:"PurgeQueueResponse"`
	Xmlns    string           `xml:"xmlns,attr"`
	Metadata ResponseMetadata `xml:"ResponseMetadata"`
}

type SendMessageResult struct {
	MD5OfMessageBody string `xml:"MD5OfMessageBody"`
	MessageID        string `xml:"MessageId"`
}

type SendMessageResponse struct {
	XMLName  xml.Name          `xml:"SendMessageResponse"`
	Xmlns    string            `xml:"xmlns,attr"`
	Result   SendMessageResult `xml:"SendMessageResult"`
	Metadata ResponseMetadata  `xml:"ResponseMetadata"`
}

// attribute is a single Name/Value pair, the wire shape SQS uses for a
// message's Attribute list.
type attribute struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

// resultMessage generalizes the teacher's ResultMessage to carry a
// repeated Attribute list instead of a single fixed field.
type resultMessage struct {
	MessageID     string      `xml:"MessageId,omitempty"`
	ReceiptHandle string      `xml:"ReceiptHandle,omitempty"`
	MD5OfBody     string      `xml:"MD5OfBody,omitempty"`
	Body          []byte      `xml:"Body,omitempty"`
	Attribute     []attribute `xml:"Attribute,omitempty"`
}

// receiveMessageResult generalizes the teacher's ReceiveMessageResult
// (which only ever held a single *ResultMessage) to a slice, since
// ReceiveMessage can return up to ten messages per spec.md §4.5.
type receiveMessageResult struct {
	Message []resultMessage `xml:"Message,omitempty"`
}

type ReceiveMessageResponse struct {
	XMLName  xml.Name             `xml:"ReceiveMessageResponse"`
	Xmlns    string               `xml:"xmlns,attr"`
	Result   receiveMessageResult `xml:"ReceiveMessageResult"`
	Metadata ResponseMetadata     `xml:"ResponseMetadata"`
}

type DeleteMessageResponse struct {
	XMLName  xml.Name         `xml:"DeleteMessageResponse"`
	Xmlns    string           `xml:"xmlns,attr,omitempty"`
	Metadata ResponseMetadata `xml:"ResponseMetadata,omitempty"`
}

type ChangeMessageVisibilityResponse struct {
	XMLName  xml.Name         `xml:"ChangeMessageVisibilityResponse"`
	Xmlns    string           `xml:"xmlns,attr,omitempty"`
	Metadata ResponseMetadata `xml:"ResponseMetadata,omitempty"`
}

type queueAttribute struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type getQueueAttributesResult struct {
	Attribute []queueAttribute `xml:"Attribute"`
}

type GetQueueAttributesResponse struct {
	XMLName  xml.Name                 `xml:"GetQueueAttributesResponse"`
	Xmlns    string                   `xml:"xmlns,attr"`
	Result   getQueueAttributesResult `xml:"GetQueueAttributesResult"`
	Metadata ResponseMetadata         `xml:"ResponseMetadata"`
}

type SetQueueAttributesResponse struct {
	XMLName  xml.Name         `xml:"SetQueueAttributesResponse"`
	Xmlns    string           `xml:"xmlns,attr"`
	Metadata ResponseMetadata `xml:"ResponseMetadata"`
}

// ErrorResponse is the error document from spec.md §7, rendered with
// HTTP 400 for every failed action.
type ErrorResponse struct {
	XMLName xml.Name  `xml:"ErrorResponse"`
	Error   errorBody `xml:"Error"`
}

type errorBody struct {
	Type    string `xml:"Type"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}
