package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorDisplayResolve(t *testing.T) {
	tests := []struct {
		name string
		in   AuthorDisplay
		want AuthorDisplay
	}{
		{
			name: "no name and no photo",
			in:   AuthorDisplay{},
			want: AuthorDisplay{Name: "Anonymous", PhotoURL: "https://ui-avatars.com/api/?name=A&background=0D9488&color=fff"},
		},
		{
			name: "name without photo",
			in:   AuthorDisplay{Name: "Ada Lovelace"},
			want: AuthorDisplay{Name: "Ada Lovelace", PhotoURL: "https://ui-avatars.com/api/?name=Ada+Lovelace&background=0D9488&color=fff"},
		},
		{
			name: "photo kept",
			in:   AuthorDisplay{PhotoURL: "https://cdn.example.com/me.png"},
			want: AuthorDisplay{Name: "Anonymous", PhotoURL: "https://cdn.example.com/me.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Resolve())
		})
	}
}
