/*
Package socialsdk is a Go client for the circle social service, and the home
of the request and response types shared by the server and its callers.

# Sessions

The service authenticates with HttpOnly cookies. A Client keeps them in a
cookie jar, so logging in once is enough for every later call:

	c, err := socialsdk.NewClient("https://circle.example.com")
	user, err := c.Login(ctx, "ada@example.com", "correct horse")

	page, err := c.Followers(ctx, user.ID, socialsdk.PageQuery{Size: 20})
	for page.HasNext {
		page, err = c.Followers(ctx, user.ID, socialsdk.PageQuery{Size: 20, Cursor: *page.Cursor})
	}

Refresh exchanges the refresh cookie for a new access cookie. Logout drops
both.

# Errors

Every non-2xx response is returned as *APIError carrying the status code and
the server's message:

	var apiErr *socialsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		// already following
	}
*/
package socialsdk
