package domain

import "time"

// DefaultTestimonialAuthor is shown when a testimonial has no author name.
const DefaultTestimonialAuthor = "Anonymous"

type Testimonial struct {
	TestimonialID string    `json:"id" dynamodbav:"testimonial_id"`
	SenderID      *string   `json:"sender_id" dynamodbav:"sender_id"`
	Author        string    `json:"author" dynamodbav:"author"`
	Message       string    `json:"message" dynamodbav:"message"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
}
