/*
Package encoder serializes a machine description into its canonical positional string.

The encoding is made of six blocks joined by "111":

	states      "0" repeated once per state
	alphabet    0<m>10<p>            m = |input alphabet|, p = |tape alphabet| - m
	transitions 0<i>10<j+1>10<k>10<l+1>10<d> per rule, joined by "11"
	start       0<index of the start state>
	accept      0<index> per accept state, joined by "11"
	reject      same shape as accept, empty when there are no reject states

Numbers are written in decimal. i and k index the states slice, j and l index the
tape alphabet, d is 1 for a left move and 2 for a right move. Every slice is taken
in the given order, so identical inputs always produce identical output.
*/
package encoder
